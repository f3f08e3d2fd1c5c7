package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harini-sv/sheetcheck/internal/evaluator"
	"github.com/harini-sv/sheetcheck/internal/metrics"
	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound          = errors.New("interview not found")
	ErrNoQuestions       = errors.New("no questions available for specified criteria")
	ErrInterviewComplete = errors.New("interview already completed")
)

// Enqueuer hands an evaluation job off to the background queue and
// returns its job id.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *models.EvaluationJob) (string, error)
}

// QuestionSource provides the ordered question set for a role and
// difficulty. An empty result means no interview is creatable.
type QuestionSource interface {
	Load(role, difficulty string) []models.Question
}

// SessionStore persists the opaque session document keyed by interview id
type SessionStore interface {
	InsertSession(ctx context.Context, session *models.InterviewSession) error
	GetSession(ctx context.Context, interviewID string) (*models.InterviewSession, error)
	SaveSession(ctx context.Context, session *models.InterviewSession) error
	SetAnswerStatus(ctx context.Context, interviewID, questionID string, status models.EvaluationStatus) error
}

// EvaluationStore persists final evaluations keyed by (interview, question)
type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, evaluation *models.FinalEvaluation) error
	GetEvaluationsByInterviewID(ctx context.Context, interviewID string) ([]*models.FinalEvaluation, error)
}

// Service owns the interview session state machine: question
// sequencing, answer recording, and completion. Mutation of a session
// is serialized per interview id by the single evaluation job queued
// per answer.
type Service struct {
	sessions    SessionStore
	evaluations EvaluationStore
	bank        QuestionSource
	pipeline    *evaluator.Pipeline
	enqueuer    Enqueuer

	maxQuestions         int
	defaultTimeLimitSecs int
}

func NewService(
	sessions SessionStore,
	evaluations EvaluationStore,
	bank QuestionSource,
	pipeline *evaluator.Pipeline,
	enqueuer Enqueuer,
	maxQuestions int,
	defaultTimeLimitSecs int,
) *Service {
	return &Service{
		sessions:             sessions,
		evaluations:          evaluations,
		bank:                 bank,
		pipeline:             pipeline,
		enqueuer:             enqueuer,
		maxQuestions:         maxQuestions,
		defaultTimeLimitSecs: defaultTimeLimitSecs,
	}
}

// Create selects the question set for the role and difficulty,
// truncates it to the configured maximum, and opens an active session.
func (s *Service) Create(ctx context.Context, candidateName, role, difficulty string) (*models.InterviewSession, error) {
	qs := s.bank.Load(role, difficulty)
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	if len(qs) > s.maxQuestions {
		qs = qs[:s.maxQuestions]
	}
	for i := range qs {
		if qs[i].TimeLimitSeconds <= 0 {
			qs[i].TimeLimitSeconds = s.defaultTimeLimitSecs
		}
	}

	session := &models.InterviewSession{
		InterviewID:          uuid.New().String(),
		CandidateID:          uuid.New().String(),
		CandidateName:        candidateName,
		Role:                 role,
		Difficulty:           difficulty,
		Questions:            qs,
		CurrentQuestionIndex: 0,
		Answers:              []models.AnswerSubmission{},
		Status:               models.SessionActive,
	}

	if err := s.sessions.InsertSession(ctx, session); err != nil {
		return nil, err
	}

	metrics.InterviewCount.Inc()
	log.Info().
		Str("interviewId", session.InterviewID).
		Str("role", role).
		Str("difficulty", difficulty).
		Int("questions", len(qs)).
		Msg("Interview created")

	return session, nil
}

// Progress reports the 1-based position within the question set
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// NextQuestion returns the question at the current index, or marks the
// session completed once the index reaches the question count.
// Completed is a terminal state.
func (s *Service) NextQuestion(ctx context.Context, interviewID string) (*models.Question, Progress, bool, error) {
	session, err := s.sessions.GetSession(ctx, interviewID)
	if err != nil {
		return nil, Progress{}, false, err
	}
	if session == nil {
		return nil, Progress{}, false, ErrNotFound
	}

	if session.Status == models.SessionCompleted {
		return nil, Progress{}, true, nil
	}

	if session.CurrentQuestionIndex >= len(session.Questions) {
		session.Status = models.SessionCompleted
		if err := s.sessions.SaveSession(ctx, session); err != nil {
			return nil, Progress{}, false, err
		}
		log.Info().Str("interviewId", interviewID).Msg("Interview completed")
		return nil, Progress{}, true, nil
	}

	question := session.Questions[session.CurrentQuestionIndex]
	progress := Progress{
		Current: session.CurrentQuestionIndex + 1,
		Total:   len(session.Questions),
	}
	return &question, progress, false, nil
}

// SubmitAnswer records the submission at the current index, queues its
// evaluation, and advances the index by exactly one regardless of the
// evaluation outcome. A failed evaluation still consumes the slot.
func (s *Service) SubmitAnswer(ctx context.Context, interviewID, answerText, filePath string) (string, error) {
	session, err := s.sessions.GetSession(ctx, interviewID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrNotFound
	}
	if session.Status != models.SessionActive || session.CurrentQuestionIndex >= len(session.Questions) {
		return "", ErrInterviewComplete
	}

	question := session.Questions[session.CurrentQuestionIndex]

	session.Answers = append(session.Answers, models.AnswerSubmission{
		QuestionID:       question.ID,
		AnswerText:       answerText,
		FilePath:         filePath,
		SubmittedAt:      time.Now(),
		EvaluationStatus: models.EvaluationPending,
	})
	session.CurrentQuestionIndex++
	if session.CurrentQuestionIndex >= len(session.Questions) {
		session.Status = models.SessionCompleted
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return "", err
	}

	jobID, err := s.enqueuer.Enqueue(ctx, &models.EvaluationJob{
		InterviewID: interviewID,
		QuestionID:  question.ID,
		AnswerText:  answerText,
		FilePath:    filePath,
	})
	if err != nil {
		return "", fmt.Errorf("failed to enqueue evaluation: %w", err)
	}

	log.Info().
		Str("interviewId", interviewID).
		Str("questionId", question.ID).
		Str("jobId", jobID).
		Msg("Answer submitted, evaluation queued")

	return jobID, nil
}

// ProcessEvaluation runs the evaluation pipeline for one queued job and
// records the outcome. Re-running the same job yields the same stored
// evaluation, keyed by the (interview, question) pair.
func (s *Service) ProcessEvaluation(ctx context.Context, job *models.EvaluationJob) error {
	session, err := s.sessions.GetSession(ctx, job.InterviewID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNotFound
	}

	var question *models.Question
	for i := range session.Questions {
		if session.Questions[i].ID == job.QuestionID {
			question = &session.Questions[i]
			break
		}
	}
	if question == nil {
		return fmt.Errorf("question %s not in interview %s", job.QuestionID, job.InterviewID)
	}

	start := time.Now()
	evaluation := s.pipeline.Run(ctx, job.InterviewID, question, job.AnswerText, job.FilePath)
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	metrics.EvaluationCount.WithLabelValues(string(evaluation.Verdict)).Inc()
	if evaluation.Degraded {
		metrics.LLMFallbackCount.Inc()
	}

	if err := s.evaluations.SaveEvaluation(ctx, evaluation); err != nil {
		// The pipeline itself never fails; a storage error must surface
		// so the retry handler can re-deliver the job.
		if statusErr := s.sessions.SetAnswerStatus(ctx, job.InterviewID, job.QuestionID, models.EvaluationFailed); statusErr != nil {
			log.Error().Err(statusErr).Str("interviewId", job.InterviewID).Msg("Failed to mark answer failed")
		}
		return err
	}

	return s.sessions.SetAnswerStatus(ctx, job.InterviewID, job.QuestionID, models.EvaluationEvaluated)
}
