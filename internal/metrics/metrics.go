// Package metrics provides Prometheus metrics collectors for the pipeline.
//
// Purpose:
//
//	This package defines and exports Prometheus metrics for batch runs,
//	stage execution, categorization, pattern learning, and storage writes.
//	Metrics are registered globally and exposed via the dashboard server's
//	/metrics endpoint.
//
// Dependencies:
//   - github.com/prometheus/client_golang/prometheus: Prometheus Go client
//
// Usage:
//
//	Metrics are automatically registered when the package is imported.
//	Use the exported functions to record metric values:
//	  metrics.RecordRun("SDR", "success", 1.42)
//	  metrics.RecordStage("ingestion", 0.31)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "omnipos"

var (
	// RunsTotal counts pipeline runs by restaurant and result.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by restaurant and result",
		},
		[]string{"restaurant", "result"}, // result: success, failure
	)

	// RunDurationSeconds measures end-to-end run duration.
	RunDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "End-to-end duration of pipeline runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	// StageDurationSeconds measures per-stage duration.
	StageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// OrdersCategorizedTotal counts categorized orders by category.
	OrdersCategorizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "categorization",
			Name:      "orders_total",
			Help:      "Total number of categorized orders by category",
		},
		[]string{"category"}, // category: Lobby, Drive-Thru, ToGo
	)

	// PatternsLearnedTotal counts pattern upserts by store kind.
	PatternsLearnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "patterns",
			Name:      "learned_total",
			Help:      "Total number of pattern updates by store kind",
		},
		[]string{"kind"}, // kind: daily, timeslot
	)

	// StorageRowsTotal counts rows written by table.
	StorageRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "rows_total",
			Help:      "Total number of rows written by table",
		},
		[]string{"table"}, // table: daily_operations, shift_operations, timeslot_results
	)
)

// RecordRun records a completed pipeline run.
func RecordRun(restaurant, result string, durationSeconds float64) {
	RunsTotal.WithLabelValues(restaurant, result).Inc()
	RunDurationSeconds.WithLabelValues(result).Observe(durationSeconds)
}

// RecordStage records one stage execution.
func RecordStage(stage string, durationSeconds float64) {
	StageDurationSeconds.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordOrderCategorized records one categorized order.
func RecordOrderCategorized(category string) {
	OrdersCategorizedTotal.WithLabelValues(category).Inc()
}

// RecordPatternsLearned records pattern upserts by kind.
func RecordPatternsLearned(kind string, n int) {
	PatternsLearnedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordStorageRows records rows written to one table.
func RecordStorageRows(table string, n int) {
	StorageRowsTotal.WithLabelValues(table).Add(float64(n))
}
