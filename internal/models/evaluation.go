package models

import (
	"time"
)

// Verdict is the tri-state outcome of an evaluation
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
	VerdictFlag Verdict = "flag"
)

// Valid reports whether v is one of the three known verdict tokens
func (v Verdict) Valid() bool {
	return v == VerdictPass || v == VerdictFail || v == VerdictFlag
}

// DeterministicResult is the outcome of the rule-based checks.
// Score is normalized to [0,1]; Confidence is fixed per question type.
type DeterministicResult struct {
	PassedTests int      `bson:"passedTests" json:"passed_tests"`
	TotalTests  int      `bson:"totalTests" json:"total_tests"`
	TestDetails []string `bson:"testDetails" json:"test_details"`
	Score       float64  `bson:"score" json:"score"`
	Confidence  float64  `bson:"confidence" json:"confidence"`
}

// RubricResult is a four-axis 0-4 assessment from the scoring service.
// All numeric fields are clamped into range before the result is accepted.
type RubricResult struct {
	Correctness float64 `bson:"correctness" json:"correctness"`
	Explanation float64 `bson:"explanation" json:"explanation"`
	Efficiency  float64 `bson:"efficiency" json:"efficiency"`
	Robustness  float64 `bson:"robustness" json:"robustness"`
	Verdict     Verdict `bson:"verdict" json:"verdict"`
	Confidence  float64 `bson:"confidence" json:"confidence"`
	Notes       string  `bson:"notes" json:"notes"`
}

// Clamp forces every numeric field into its declared range and coerces
// an unknown verdict token to fail, the conservative default.
func (r *RubricResult) Clamp() {
	r.Correctness = Clamp(r.Correctness, 0, 4)
	r.Explanation = Clamp(r.Explanation, 0, 4)
	r.Efficiency = Clamp(r.Efficiency, 0, 4)
	r.Robustness = Clamp(r.Robustness, 0, 4)
	r.Confidence = Clamp(r.Confidence, 0, 1)
	if !r.Verdict.Valid() {
		r.Verdict = VerdictFail
	}
}

// Overall is the mean of the four sub-scores, already on the 0-4 scale
func (r *RubricResult) Overall() float64 {
	return (r.Correctness + r.Explanation + r.Efficiency + r.Robustness) / 4
}

// FinalEvaluation blends the deterministic and rubric results into one
// score on the 0-4 scale and an authoritative verdict.
type FinalEvaluation struct {
	InterviewID   string              `bson:"interviewId" json:"interview_id"`
	QuestionID    string              `bson:"questionId" json:"question_id"`
	Deterministic DeterministicResult `bson:"deterministic" json:"deterministic"`
	Rubric        RubricResult        `bson:"rubric" json:"rubric"`
	Degraded      bool                `bson:"degraded" json:"degraded"`
	DegradedNote  string              `bson:"degradedNote,omitempty" json:"degraded_note,omitempty"`
	FinalScore    float64             `bson:"finalScore" json:"final_score"`
	Verdict       Verdict             `bson:"verdict" json:"verdict"`
	CreatedAt     time.Time           `bson:"createdAt" json:"created_at"`
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
