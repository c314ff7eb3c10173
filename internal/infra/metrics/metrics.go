// File: internal/infra/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	docsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_docs_processed_total",
			Help: "Documents that reached a terminal state, per category and outcome.",
		},
		[]string{"category", "outcome"},
	)

	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_fetch_failures_total",
			Help: "URL fetches that ended in a terminal fetch failure.",
		},
		[]string{"category"},
	)

	completionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_completion_latency_seconds",
			Help:    "Completion call latency per backend and outcome.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"backend", "success"},
	)

	healingAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_healing_attempts_total",
			Help: "Malformed-response repair round-trips, per final outcome.",
		},
		[]string{"outcome"},
	)
)

// ObserveDocProcessed records a document reaching its terminal state.
func ObserveDocProcessed(category, outcome string) {
	docsProcessed.WithLabelValues(category, outcome).Inc()
}

// ObserveFetchFailure records a terminal fetch failure.
func ObserveFetchFailure(category string) {
	fetchFailures.WithLabelValues(category).Inc()
}

// ObserveCompletion records one completion call.
func ObserveCompletion(backend string, success bool, seconds float64) {
	label := "false"
	if success {
		label = "true"
	}
	completionLatency.WithLabelValues(backend, label).Observe(seconds)
}

// ObserveHealing records a repair round-trip ("healed" or "failed").
func ObserveHealing(outcome string) {
	healingAttempts.WithLabelValues(outcome).Inc()
}
