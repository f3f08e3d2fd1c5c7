package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EvaluationCount counts completed evaluations by verdict
	EvaluationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of answer evaluations",
		},
		[]string{"verdict"},
	)

	// EvaluationDuration measures full pipeline duration
	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "evaluation_duration_seconds",
			Help: "Answer evaluation duration in seconds",
		},
	)

	// LLMFallbackCount counts rubric evaluations that fell back locally
	LLMFallbackCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_fallbacks_total",
			Help: "Total number of rubric evaluations served by the local fallback",
		},
	)

	// InterviewCount counts created interviews
	InterviewCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interviews_created_total",
			Help: "Total number of interviews created",
		},
	)
)

// InitPrometheus registers all collectors
func InitPrometheus() {
	prometheus.MustRegister(EvaluationCount)
	prometheus.MustRegister(EvaluationDuration)
	prometheus.MustRegister(LLMFallbackCount)
	prometheus.MustRegister(InterviewCount)
}
