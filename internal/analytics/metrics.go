package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregationRuns counts aggregation job runs.
	// Labels: result (success, error)
	AggregationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toodoo",
			Subsystem: "aggregation",
			Name:      "runs_total",
			Help:      "Total number of analytics aggregation runs",
		},
		[]string{"result"},
	)

	// AggregationDuration tracks how long one aggregation run takes.
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "toodoo",
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Duration of analytics aggregation runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// AggregatesWritten counts weekly aggregate rows upserted.
	AggregatesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "toodoo",
			Subsystem: "aggregation",
			Name:      "periods_written_total",
			Help:      "Total number of weekly aggregate rows written",
		},
	)
)

// RecordAggregationResult records the outcome of an aggregation run.
func RecordAggregationResult(success bool) {
	if success {
		AggregationRuns.WithLabelValues("success").Inc()
	} else {
		AggregationRuns.WithLabelValues("error").Inc()
	}
}
