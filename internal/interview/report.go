package interview

import (
	"context"
	"time"

	"github.com/harini-sv/sheetcheck/internal/models"
)

// QuestionReport is one row of the final report
type QuestionReport struct {
	QuestionID        string         `json:"question_id"`
	QuestionText      string         `json:"question_text"`
	QuestionType      string         `json:"question_type"`
	AnswerText        string         `json:"answer_text"`
	FinalScore        float64        `json:"final_score"`
	Verdict           models.Verdict `json:"verdict"`
	PassedTests       int            `json:"passed_tests"`
	TotalTests        int            `json:"total_tests"`
	Notes             string         `json:"notes"`
	Degraded          bool           `json:"degraded"`
	EvaluationPending bool           `json:"evaluation_pending"`
}

// Report summarizes a whole interview
type Report struct {
	InterviewID   string               `json:"interview_id"`
	CandidateName string               `json:"candidate_name"`
	Role          string               `json:"role"`
	Difficulty    string               `json:"difficulty"`
	Status        models.SessionStatus `json:"status"`
	AverageScore  float64              `json:"average_score"`
	Passed        int                  `json:"passed"`
	Failed        int                  `json:"failed"`
	Flagged       int                  `json:"flagged"`
	Pending       int                  `json:"pending"`
	Questions     []QuestionReport     `json:"questions"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// Report aggregates the recorded evaluations for an interview. Answers
// whose evaluation has not landed yet are reported as pending rather
// than omitted.
func (s *Service) Report(ctx context.Context, interviewID string) (*Report, error) {
	session, err := s.sessions.GetSession(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}

	evaluations, err := s.evaluations.GetEvaluationsByInterviewID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]*models.FinalEvaluation, len(evaluations))
	for _, ev := range evaluations {
		byQuestion[ev.QuestionID] = ev
	}

	report := &Report{
		InterviewID:   session.InterviewID,
		CandidateName: session.CandidateName,
		Role:          session.Role,
		Difficulty:    session.Difficulty,
		Status:        session.Status,
		GeneratedAt:   time.Now(),
	}

	scored := 0
	for _, answer := range session.Answers {
		var question *models.Question
		for i := range session.Questions {
			if session.Questions[i].ID == answer.QuestionID {
				question = &session.Questions[i]
				break
			}
		}
		if question == nil {
			continue
		}

		row := QuestionReport{
			QuestionID:   question.ID,
			QuestionText: question.Text,
			QuestionType: string(question.Type),
			AnswerText:   answer.AnswerText,
		}

		if ev, ok := byQuestion[answer.QuestionID]; ok {
			row.FinalScore = ev.FinalScore
			row.Verdict = ev.Verdict
			row.PassedTests = ev.Deterministic.PassedTests
			row.TotalTests = ev.Deterministic.TotalTests
			row.Notes = ev.Rubric.Notes
			row.Degraded = ev.Degraded

			report.AverageScore += ev.FinalScore
			scored++
			switch ev.Verdict {
			case models.VerdictPass:
				report.Passed++
			case models.VerdictFail:
				report.Failed++
			case models.VerdictFlag:
				report.Flagged++
			}
		} else {
			row.EvaluationPending = true
			report.Pending++
		}

		report.Questions = append(report.Questions, row)
	}

	if scored > 0 {
		report.AverageScore /= float64(scored)
	}

	return report, nil
}
