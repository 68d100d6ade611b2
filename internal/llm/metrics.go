package llm

import "github.com/prometheus/client_golang/prometheus"

var (
	// llmRequests counts completions by backend and outcome
	// (ok|config|upstream|network).
	llmRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_llm_requests_total",
			Help: "Model completions by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	// llmLatency records wall time of each backend call.
	llmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_llm_request_duration_seconds",
			Help:    "Duration of model completions in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(llmRequests, llmLatency)
}

func outcome(k Kind) string {
	if k == KindNone {
		return "ok"
	}
	return string(k)
}
