package interview

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/harini-sv/sheetcheck/internal/evaluator"
	"github.com/harini-sv/sheetcheck/internal/evaluator/llm"
	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/harini-sv/sheetcheck/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessionStore struct {
	sessions map[string]*models.InterviewSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*models.InterviewSession{}}
}

func (m *memSessionStore) InsertSession(_ context.Context, session *models.InterviewSession) error {
	m.sessions[session.InterviewID] = session
	return nil
}

func (m *memSessionStore) GetSession(_ context.Context, interviewID string) (*models.InterviewSession, error) {
	return m.sessions[interviewID], nil
}

func (m *memSessionStore) SaveSession(_ context.Context, session *models.InterviewSession) error {
	m.sessions[session.InterviewID] = session
	return nil
}

func (m *memSessionStore) SetAnswerStatus(_ context.Context, interviewID, questionID string, status models.EvaluationStatus) error {
	session, ok := m.sessions[interviewID]
	if !ok {
		return errors.New("not found")
	}
	for i := range session.Answers {
		if session.Answers[i].QuestionID == questionID {
			session.Answers[i].EvaluationStatus = status
		}
	}
	return nil
}

type memEvaluationStore struct {
	evaluations map[string]*models.FinalEvaluation
	saveErr     error
}

func newMemEvaluationStore() *memEvaluationStore {
	return &memEvaluationStore{evaluations: map[string]*models.FinalEvaluation{}}
}

func (m *memEvaluationStore) SaveEvaluation(_ context.Context, evaluation *models.FinalEvaluation) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	// Upsert on the (interview, question) pair
	m.evaluations[evaluation.InterviewID+"/"+evaluation.QuestionID] = evaluation
	return nil
}

func (m *memEvaluationStore) GetEvaluationsByInterviewID(_ context.Context, interviewID string) ([]*models.FinalEvaluation, error) {
	var out []*models.FinalEvaluation
	for _, ev := range m.evaluations {
		if ev.InterviewID == interviewID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type stubSource struct {
	questions []models.Question
}

func (s *stubSource) Load(role, difficulty string) []models.Question {
	return s.questions
}

type captureEnqueuer struct {
	jobs []*models.EvaluationJob
	err  error
}

func (c *captureEnqueuer) Enqueue(_ context.Context, job *models.EvaluationJob) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.jobs = append(c.jobs, job)
	return fmt.Sprintf("job-%d", len(c.jobs)), nil
}

func makeQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:   fmt.Sprintf("q%d", i+1),
			Text: fmt.Sprintf("Question %d", i+1),
			Type: models.TypeFormula,
			Golden: models.GoldenAnswer{
				Formula: &models.FormulaGolden{RequiredFunctions: []string{"SUM"}},
			},
		}
	}
	return qs
}

func mockPipeline() *evaluator.Pipeline {
	return evaluator.NewPipeline(
		evaluator.NewDeterministic(workbook.NewXLSXOpener()),
		llm.NewEvaluator(nil, true),
		evaluator.Weights{Deterministic: 0.6, LLM: 0.4},
		evaluator.Thresholds{Pass: 2.5, FlagConfidence: 0.45},
	)
}

func newTestService(questions []models.Question) (*Service, *memSessionStore, *memEvaluationStore, *captureEnqueuer) {
	sessions := newMemSessionStore()
	evaluations := newMemEvaluationStore()
	enqueuer := &captureEnqueuer{}
	svc := NewService(sessions, evaluations, &stubSource{questions: questions}, mockPipeline(), enqueuer, 6, 300)
	return svc, sessions, evaluations, enqueuer
}

func TestCreateTruncatesAndAppliesDefaults(t *testing.T) {
	svc, _, _, _ := newTestService(makeQuestions(8))

	session, err := svc.Create(context.Background(), "Priya", "data_analyst", "medium")
	require.NoError(t, err)

	assert.Len(t, session.Questions, 6)
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, 0, session.CurrentQuestionIndex)
	for _, q := range session.Questions {
		assert.Equal(t, 300, q.TimeLimitSeconds)
	}
}

func TestCreateNoQuestions(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), "Priya", "unknown_role", "hard")
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestInterviewLifecycle(t *testing.T) {
	svc, sessions, _, enqueuer := newTestService(makeQuestions(6))
	ctx := context.Background()

	session, err := svc.Create(ctx, "Priya", "data_analyst", "easy")
	require.NoError(t, err)
	id := session.InterviewID

	for i := 0; i < 6; i++ {
		question, progress, completed, err := svc.NextQuestion(ctx, id)
		require.NoError(t, err)
		require.False(t, completed)
		assert.Equal(t, fmt.Sprintf("q%d", i+1), question.ID)
		assert.Equal(t, i+1, progress.Current)
		assert.Equal(t, 6, progress.Total)

		jobID, err := svc.SubmitAnswer(ctx, id, "=SUM(A1:A10)", "")
		require.NoError(t, err)
		assert.NotEmpty(t, jobID)

		// Exactly one slot consumed per submission
		assert.Equal(t, i+1, sessions.sessions[id].CurrentQuestionIndex)
	}

	_, _, completed, err := svc.NextQuestion(ctx, id)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, models.SessionCompleted, sessions.sessions[id].Status)

	_, err = svc.SubmitAnswer(ctx, id, "one more", "")
	assert.ErrorIs(t, err, ErrInterviewComplete)

	require.Len(t, enqueuer.jobs, 6)
	assert.Equal(t, "q1", enqueuer.jobs[0].QuestionID)
	assert.Equal(t, "q6", enqueuer.jobs[5].QuestionID)
}

func TestNextQuestionUnknownInterview(t *testing.T) {
	svc, _, _, _ := newTestService(makeQuestions(1))

	_, _, _, err := svc.NextQuestion(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessEvaluationStoresResult(t *testing.T) {
	svc, sessions, evaluations, enqueuer := newTestService(makeQuestions(1))
	ctx := context.Background()

	session, err := svc.Create(ctx, "Priya", "data_analyst", "easy")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(ctx, session.InterviewID, "=SUM(A1:A10)", "")
	require.NoError(t, err)
	require.Len(t, enqueuer.jobs, 1)

	require.NoError(t, svc.ProcessEvaluation(ctx, enqueuer.jobs[0]))

	stored, err := evaluations.GetEvaluationsByInterviewID(ctx, session.InterviewID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.VerdictPass, stored[0].Verdict)
	assert.False(t, stored[0].Degraded)
	assert.Greater(t, stored[0].FinalScore, 2.5)

	answer := sessions.sessions[session.InterviewID].Answers[0]
	assert.Equal(t, models.EvaluationEvaluated, answer.EvaluationStatus)
}

func TestProcessEvaluationIdempotent(t *testing.T) {
	svc, _, evaluations, enqueuer := newTestService(makeQuestions(1))
	ctx := context.Background()

	session, err := svc.Create(ctx, "Priya", "data_analyst", "easy")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, session.InterviewID, "=SUM(A1:A10)", "")
	require.NoError(t, err)

	require.NoError(t, svc.ProcessEvaluation(ctx, enqueuer.jobs[0]))
	first, _ := evaluations.GetEvaluationsByInterviewID(ctx, session.InterviewID)

	require.NoError(t, svc.ProcessEvaluation(ctx, enqueuer.jobs[0]))
	second, _ := evaluations.GetEvaluationsByInterviewID(ctx, session.InterviewID)

	require.Len(t, second, 1)
	assert.Equal(t, first[0].FinalScore, second[0].FinalScore)
	assert.Equal(t, first[0].Verdict, second[0].Verdict)
}

func TestProcessEvaluationStorageFailure(t *testing.T) {
	svc, sessions, evaluations, enqueuer := newTestService(makeQuestions(1))
	ctx := context.Background()

	session, err := svc.Create(ctx, "Priya", "data_analyst", "easy")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, session.InterviewID, "=SUM(A1:A10)", "")
	require.NoError(t, err)

	evaluations.saveErr = errors.New("mongo down")

	err = svc.ProcessEvaluation(ctx, enqueuer.jobs[0])
	require.Error(t, err)

	answer := sessions.sessions[session.InterviewID].Answers[0]
	assert.Equal(t, models.EvaluationFailed, answer.EvaluationStatus)
}

func TestReportAggregates(t *testing.T) {
	svc, _, _, enqueuer := newTestService(makeQuestions(2))
	ctx := context.Background()

	session, err := svc.Create(ctx, "Priya", "data_analyst", "easy")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(ctx, session.InterviewID, "=SUM(A1:A10)", "")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, session.InterviewID, "no formula here", "")
	require.NoError(t, err)

	// Evaluate only the first answer; the second stays pending
	require.NoError(t, svc.ProcessEvaluation(ctx, enqueuer.jobs[0]))

	report, err := svc.Report(ctx, session.InterviewID)
	require.NoError(t, err)

	assert.Equal(t, session.InterviewID, report.InterviewID)
	assert.Equal(t, "Priya", report.CandidateName)
	assert.Equal(t, models.SessionCompleted, report.Status)
	require.Len(t, report.Questions, 2)

	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Pending)
	assert.False(t, report.Questions[0].EvaluationPending)
	assert.True(t, report.Questions[1].EvaluationPending)
	assert.Greater(t, report.AverageScore, 0.0)
}
