package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RequestsTotal counts API requests by route and status code.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "letter_simplify",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests, labeled by route and HTTP status.",
	}, []string{"route", "status"})

	// UpstreamCallsTotal counts external AI provider calls by provider,
	// operation and result.
	UpstreamCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "letter_simplify",
		Subsystem: "upstream",
		Name:      "calls_total",
		Help:      "Total number of external AI provider calls, labeled by provider, operation and result.",
	}, []string{"provider", "operation", "result"})

	// UpstreamDurationSeconds measures external call latency per operation.
	UpstreamDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "letter_simplify",
		Subsystem: "upstream",
		Name:      "call_duration_seconds",
		Help:      "Latency of external AI provider calls.",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "operation"})

	// IllustrationsGeneratedTotal counts illustrations returned to callers.
	IllustrationsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "letter_simplify",
		Subsystem: "illustrations",
		Name:      "generated_total",
		Help:      "Total number of illustrations successfully generated.",
	})

	// IllustrationsFailedTotal counts per-key-point generation failures.
	// These are swallowed by design; the counter is the only place they
	// surface besides logs.
	IllustrationsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "letter_simplify",
		Subsystem: "illustrations",
		Name:      "failed_total",
		Help:      "Total number of illustration generation calls that failed or returned no image.",
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			UpstreamCallsTotal,
			UpstreamDurationSeconds,
			IllustrationsGeneratedTotal,
			IllustrationsFailedTotal,
		)
	})
}
