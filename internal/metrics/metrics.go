// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// analysisDuration measures one analysis request end to end.
	// Labels: kind (teachers, bias, subjects), outcome (ok or an error code)
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "marksheet",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Analysis request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"kind", "outcome"})

	// analysisTotal counts analysis requests.
	// Labels: kind, outcome
	analysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marksheet",
		Subsystem: "analysis",
		Name:      "requests_total",
		Help:      "Total analysis requests by kind and outcome",
	}, []string{"kind", "outcome"})

	// uploadsTotal counts dataset uploads.
	// Labels: outcome (ok or the validation error code)
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marksheet",
		Subsystem: "dataset",
		Name:      "uploads_total",
		Help:      "Total dataset uploads by outcome",
	}, []string{"outcome"})

	// datasetRows tracks the size of accepted datasets.
	datasetRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "marksheet",
		Subsystem: "dataset",
		Name:      "rows",
		Help:      "Rows per accepted dataset",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})

	// runsPersisted counts analysis audit records written by the worker.
	// Labels: path (bulk, single, requeued, dead_letter)
	runsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marksheet",
		Subsystem: "worker",
		Name:      "runs_persisted_total",
		Help:      "Analysis runs handled by the persist worker",
	}, []string{"path"})
)

// ObserveAnalysis records one analysis request.
func ObserveAnalysis(kind, outcome string, elapsed time.Duration) {
	analysisDuration.WithLabelValues(kind, outcome).Observe(elapsed.Seconds())
	analysisTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveUpload records one upload attempt. rows is ignored for failures.
func ObserveUpload(outcome string, rows int) {
	uploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		datasetRows.Observe(float64(rows))
	}
}

// ObserveRunsPersisted records n audit records handled along path.
func ObserveRunsPersisted(path string, n int) {
	runsPersisted.WithLabelValues(path).Add(float64(n))
}

// OutcomeOK labels successful operations.
const OutcomeOK = "ok"
