// Package metrics defines the Prometheus instruments exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AdviseRequests.
const (
	OutcomePlanned  = "planned"
	OutcomeNoRole   = "no_role"
	OutcomeRejected = "rejected"
)

// Backend labels for BackendDegraded.
const (
	BackendSemantic = "semantic"
	BackendReranker = "reranker"
)

var (
	AdviseRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upskill_advise_requests_total",
			Help: "Advise requests by outcome",
		},
		[]string{"outcome"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upskill_pipeline_duration_seconds",
			Help:    "Duration of the retrieve-rank-select-schedule pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)

	RetrievalCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upskill_retrieval_candidates",
			Help:    "Number of candidates returned per retrieval source",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"source"}, // "lexical", "semantic", "fused"
	)

	BackendDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upskill_backend_degraded_total",
			Help: "Times an optional backend was unavailable and the pipeline fell back",
		},
		[]string{"backend"},
	)
)

// RecordAdvise counts one advise request and, for completed pipelines, its latency.
func RecordAdvise(outcome string, elapsed time.Duration) {
	AdviseRequests.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRejected {
		PipelineDuration.Observe(elapsed.Seconds())
	}
}

// RecordCandidates observes the candidate count for a retrieval source.
func RecordCandidates(source string, n int) {
	RetrievalCandidates.WithLabelValues(source).Observe(float64(n))
}

// RecordDegraded counts a fallback for the named backend.
func RecordDegraded(backend string) {
	BackendDegraded.WithLabelValues(backend).Inc()
}
