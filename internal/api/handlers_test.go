package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/harini-sv/sheetcheck/internal/config"
	"github.com/harini-sv/sheetcheck/internal/evaluator"
	"github.com/harini-sv/sheetcheck/internal/evaluator/llm"
	"github.com/harini-sv/sheetcheck/internal/interview"
	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/harini-sv/sheetcheck/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	byID map[string]*models.InterviewSession
}

func (m *memSessions) InsertSession(_ context.Context, s *models.InterviewSession) error {
	m.byID[s.InterviewID] = s
	return nil
}

func (m *memSessions) GetSession(_ context.Context, id string) (*models.InterviewSession, error) {
	return m.byID[id], nil
}

func (m *memSessions) SaveSession(_ context.Context, s *models.InterviewSession) error {
	m.byID[s.InterviewID] = s
	return nil
}

func (m *memSessions) SetAnswerStatus(_ context.Context, id, questionID string, status models.EvaluationStatus) error {
	s, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			s.Answers[i].EvaluationStatus = status
		}
	}
	return nil
}

type memEvaluations struct {
	byKey map[string]*models.FinalEvaluation
}

func (m *memEvaluations) SaveEvaluation(_ context.Context, ev *models.FinalEvaluation) error {
	m.byKey[ev.InterviewID+"/"+ev.QuestionID] = ev
	return nil
}

func (m *memEvaluations) GetEvaluationsByInterviewID(_ context.Context, id string) ([]*models.FinalEvaluation, error) {
	var out []*models.FinalEvaluation
	for _, ev := range m.byKey {
		if ev.InterviewID == id {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fixedSource struct {
	questions []models.Question
}

func (f *fixedSource) Load(role, difficulty string) []models.Question {
	if role != "data_analyst" {
		return nil
	}
	return f.questions
}

type syncEnqueuer struct {
	n int
}

func (e *syncEnqueuer) Enqueue(_ context.Context, job *models.EvaluationJob) (string, error) {
	e.n++
	return fmt.Sprintf("job-%d", e.n), nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		MockMode:    true,
		UploadDir:   t.TempDir(),
		MaxFileSize: 1024,
	}

	questions := []models.Question{
		{
			ID:   "q1",
			Text: "Write a SUM formula",
			Type: models.TypeFormula,
			Golden: models.GoldenAnswer{
				Formula: &models.FormulaGolden{RequiredFunctions: []string{"SUM"}},
			},
			TimeLimitSeconds: 120,
		},
		{
			ID:   "q2",
			Text: "What does VLOOKUP do?",
			Type: models.TypeExplanation,
		},
	}

	pipeline := evaluator.NewPipeline(
		evaluator.NewDeterministic(workbook.NewXLSXOpener()),
		llm.NewEvaluator(nil, true),
		evaluator.Weights{Deterministic: 0.6, LLM: 0.4},
		evaluator.Thresholds{Pass: 2.5, FlagConfidence: 0.45},
	)

	svc := interview.NewService(
		&memSessions{byID: map[string]*models.InterviewSession{}},
		&memEvaluations{byKey: map[string]*models.FinalEvaluation{}},
		&fixedSource{questions: questions},
		pipeline,
		&syncEnqueuer{},
		6,
		300,
	)

	h := NewHandler(cfg, svc, nil)

	router := gin.New()
	router.GET("/health", h.Health)
	router.POST("/interviews", h.CreateInterview)
	router.GET("/interviews/:id/next", h.NextQuestion)
	router.POST("/interviews/:id/answer", h.SubmitAnswer)
	router.GET("/interviews/:id/report", h.Report)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["mock_mode"])
}

func TestCreateInterview(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/interviews", gin.H{
		"candidate_name": "Priya",
		"role":           "data_analyst",
		"difficulty":     "easy",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["interview_id"])

	first, ok := body["first_question"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "q1", first["id"])
	assert.Equal(t, float64(120), first["time_limit"])
}

func TestCreateInterviewValidation(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/interviews", gin.H{"role": "data_analyst"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w)["code"])

	w = doJSON(t, router, http.MethodPost, "/interviews", gin.H{
		"candidate_name": "Priya",
		"role":           "unknown_role",
		"difficulty":     "easy",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_QUESTIONS", decode(t, w)["code"])
}

func submitAnswer(t *testing.T, router *gin.Engine, interviewID, answer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("answer_text", answer))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/interviews/"+interviewID+"/answer", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnswerFlow(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/interviews", gin.H{
		"candidate_name": "Priya",
		"role":           "data_analyst",
		"difficulty":     "easy",
	})
	require.Equal(t, http.StatusOK, w.Code)
	interviewID := decode(t, w)["interview_id"].(string)

	w = submitAnswer(t, router, interviewID, "=SUM(A1:A10)")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["evaluation_pending"])
	assert.Equal(t, "job-1", body["job_id"])

	// Second question is now current
	w = doJSON(t, router, http.MethodGet, "/interviews/"+interviewID+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	question := decode(t, w)["question"].(map[string]any)
	assert.Equal(t, "q2", question["id"])

	w = submitAnswer(t, router, interviewID, "VLOOKUP searches the first column of a range")
	require.Equal(t, http.StatusOK, w.Code)

	// Interview exhausted
	w = doJSON(t, router, http.MethodGet, "/interviews/"+interviewID+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "completed", body["status"])
	assert.Contains(t, body["report_url"], interviewID)

	w = submitAnswer(t, router, interviewID, "extra answer")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INTERVIEW_COMPLETE", decode(t, w)["code"])
}

func TestSubmitAnswerRequiresText(t *testing.T) {
	router := testRouter(t)

	w := submitAnswer(t, router, "some-id", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w)["code"])
}

func TestSubmitAnswerUnknownInterview(t *testing.T) {
	router := testRouter(t)

	w := submitAnswer(t, router, "missing-id", "=SUM(A1)")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestSubmitAnswerRejectsOversizedFile(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/interviews", gin.H{
		"candidate_name": "Priya",
		"role":           "data_analyst",
		"difficulty":     "easy",
	})
	require.Equal(t, http.StatusOK, w.Code)
	interviewID := decode(t, w)["interview_id"].(string)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("answer_text", "see attached"))
	part, err := mw.CreateFormFile("file", "big.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte(strings.Repeat("x", 2048)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/interviews/"+interviewID+"/answer", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	require.Equal(t, http.StatusBadRequest, w2.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decode(t, w2)["code"])
}

func TestReportNotFound(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/interviews/missing-id/report", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}
