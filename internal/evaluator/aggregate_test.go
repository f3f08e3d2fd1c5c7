package evaluator

import (
	"testing"

	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/stretchr/testify/assert"
)

var defaultWeights = Weights{Deterministic: 0.6, LLM: 0.4}

var defaultThresholds = Thresholds{Pass: 2.5, FlagConfidence: 0.45}

func rubric(overall, confidence float64) *models.RubricResult {
	return &models.RubricResult{
		Correctness: overall,
		Explanation: overall,
		Efficiency:  overall,
		Robustness:  overall,
		Verdict:     models.VerdictPass,
		Confidence:  confidence,
	}
}

func TestCombineBlendsScores(t *testing.T) {
	det := &models.DeterministicResult{Score: 1.0}

	score, verdict := Combine(det, rubric(4.0, 0.9), defaultWeights, defaultThresholds)

	assert.InDelta(t, 4.0, score, 1e-9)
	assert.Equal(t, models.VerdictPass, verdict)
}

func TestCombineFailsBelowPassThreshold(t *testing.T) {
	det := &models.DeterministicResult{Score: 0.25}

	score, verdict := Combine(det, rubric(1.0, 0.9), defaultWeights, defaultThresholds)

	// 0.25*4*0.6 + 1.0*0.4 = 1.0
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Equal(t, models.VerdictFail, verdict)
}

func TestCombineLowConfidenceFlagsEvenPerfectScore(t *testing.T) {
	det := &models.DeterministicResult{Score: 1.0}

	score, verdict := Combine(det, rubric(4.0, 0.40), defaultWeights, defaultThresholds)

	assert.InDelta(t, 4.0, score, 1e-9)
	assert.Equal(t, models.VerdictFlag, verdict)
}

func TestCombineConfidenceAtThresholdDoesNotFlag(t *testing.T) {
	det := &models.DeterministicResult{Score: 1.0}

	_, verdict := Combine(det, rubric(4.0, 0.45), defaultWeights, defaultThresholds)

	assert.Equal(t, models.VerdictPass, verdict)
}

func TestCombineClampsDeterministicInput(t *testing.T) {
	det := &models.DeterministicResult{Score: 3.0}

	score, _ := Combine(det, rubric(0.0, 0.9), defaultWeights, defaultThresholds)

	// Out-of-range deterministic scores are clamped to 1 before scaling
	assert.InDelta(t, 2.4, score, 1e-9)
}

func TestCombineScoreIsMonotonicInDeterministic(t *testing.T) {
	r := rubric(2.0, 0.9)
	prev := -1.0
	for _, s := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		score, _ := Combine(&models.DeterministicResult{Score: s}, r, defaultWeights, defaultThresholds)
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestCombineScoreBounds(t *testing.T) {
	cases := []struct {
		det     float64
		overall float64
	}{
		{0, 0},
		{1, 4},
		{0.5, 2.0},
		{1, 0},
		{0, 4},
	}
	for _, tc := range cases {
		score, _ := Combine(&models.DeterministicResult{Score: tc.det}, rubric(tc.overall, 0.9), defaultWeights, defaultThresholds)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 4.0)
	}
}
