package evaluator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/harini-sv/sheetcheck/internal/evaluator/llm"
	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/rs/zerolog/log"
)

// Pipeline runs one full evaluation: deterministic checks, rubric
// assessment, score aggregation. It is stateless between calls and safe
// for concurrent use.
type Pipeline struct {
	deterministic *Deterministic
	rubric        *llm.Evaluator
	weights       Weights
	thresholds    Thresholds
}

func NewPipeline(deterministic *Deterministic, rubric *llm.Evaluator, weights Weights, thresholds Thresholds) *Pipeline {
	return &Pipeline{
		deterministic: deterministic,
		rubric:        rubric,
		weights:       weights,
		thresholds:    thresholds,
	}
}

// Run evaluates one answer against its question. It always returns a
// well-formed evaluation, even under total external failure.
func (p *Pipeline) Run(ctx context.Context, interviewID string, question *models.Question, answerText, filePath string) *models.FinalEvaluation {
	start := time.Now()

	det := p.deterministic.Evaluate(question, answerText, filePath)

	outcome := p.rubric.Evaluate(ctx, question, answerText, det, artifactSummary(filePath))

	finalScore, verdict := Combine(det, &outcome.Rubric, p.weights, p.thresholds)

	log.Info().
		Str("interviewId", interviewID).
		Str("questionId", question.ID).
		Float64("deterministicScore", det.Score).
		Float64("finalScore", finalScore).
		Str("verdict", string(verdict)).
		Bool("degraded", outcome.Degraded).
		Dur("elapsed", time.Since(start)).
		Msg("Evaluation completed")

	return &models.FinalEvaluation{
		InterviewID:   interviewID,
		QuestionID:    question.ID,
		Deterministic: *det,
		Rubric:        outcome.Rubric,
		Degraded:      outcome.Degraded,
		DegradedNote:  outcome.Reason,
		FinalScore:    finalScore,
		Verdict:       verdict,
		CreatedAt:     time.Now(),
	}
}

func artifactSummary(filePath string) string {
	if filePath == "" {
		return ""
	}
	return fmt.Sprintf("candidate uploaded workbook %s", filepath.Base(filePath))
}
