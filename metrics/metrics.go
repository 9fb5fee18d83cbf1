// Package metrics provides Prometheus metrics for the teammate finder service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Custom registry to avoid default Go metrics.
var registry = prometheus.NewRegistry()

const namespace = "teamfinder"

var (
	scoringRequests = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "scoring_requests_total",
			Help:      "Total scoring requests by outcome (ok or degraded)",
		},
		[]string{"outcome"},
	)

	scoringDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "scoring_duration_seconds",
			Help:      "Wall time of a single reasoning-service scoring call",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	extractionRequests = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "requests_total",
			Help:      "Total profile extraction requests by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	assemblyRejections = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assembly",
			Name:      "rejections_total",
			Help:      "Team assembly operations rejected by invariant (team_full, request_limit, duplicate_request)",
		},
		[]string{"reason"},
	)

	requestsCancelled = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assembly",
			Name:      "requests_cancelled_total",
			Help:      "Pending requests cancelled by cause (team_full, expired, manual)",
		},
		[]string{"cause"},
	)
)

// RecordScoring counts one scoring call and its duration. outcome is "ok" or
// "degraded".
func RecordScoring(outcome string, seconds float64) {
	scoringRequests.WithLabelValues(outcome).Inc()
	scoringDuration.Observe(seconds)
}

// RecordExtraction counts one profile extraction attempt.
func RecordExtraction(source string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	extractionRequests.WithLabelValues(source, outcome).Inc()
}

// RecordAssemblyRejection counts an invariant-violation rejection.
func RecordAssemblyRejection(reason string) {
	assemblyRejections.WithLabelValues(reason).Inc()
}

// RecordRequestsCancelled counts n pending requests cancelled for the given
// cause.
func RecordRequestsCancelled(cause string, n int) {
	if n <= 0 {
		return
	}
	requestsCancelled.WithLabelValues(cause).Add(float64(n))
}

// Handler serves the custom registry for GET /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
