package evaluator

import (
	"github.com/harini-sv/sheetcheck/internal/models"
)

// Weights blend the two score sources. They need not sum to 1 but
// conventionally do.
type Weights struct {
	Deterministic float64
	LLM           float64
}

// Thresholds drive the verdict decision
type Thresholds struct {
	Pass           float64 // minimum final score for pass
	FlagConfidence float64 // confidence below this always flags
}

// Combine blends the deterministic score (rescaled from 0-1 to the
// shared 0-4 axis) with the rubric overall into one final score and
// recomputes the verdict locally. The rubric's self-reported verdict is
// advisory only and never trusted directly.
func Combine(det *models.DeterministicResult, rubric *models.RubricResult, w Weights, t Thresholds) (float64, models.Verdict) {
	detScore := models.Clamp(det.Score, 0, 1)
	finalScore := detScore*4*w.Deterministic + rubric.Overall()*w.LLM
	finalScore = models.Clamp(finalScore, 0, 4)

	// Effective confidence for thresholding is the rubric confidence;
	// the deterministic path always reports high, non-discriminating
	// confidence.
	verdict := models.VerdictFail
	switch {
	case rubric.Confidence < t.FlagConfidence:
		verdict = models.VerdictFlag
	case finalScore >= t.Pass:
		verdict = models.VerdictPass
	}

	return finalScore, verdict
}
