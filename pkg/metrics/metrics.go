// Package metrics exposes Prometheus metrics for column operations.
//
// # Basic Usage
//
//	timer := metrics.NewTimer("map")
//	out, err := col.Map(fn)
//	metrics.OperationDuration.WithLabelValues("map", col.Kind().String()).
//	    Observe(timer.Stop().Seconds())
//
// Metrics are registered on the default registry when the package loads, so
// a process that serves promhttp.Handler() picks them up without wiring.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsMapped counts rows passed through a mapped function.
	// Labels: operation (map/filter), mode (row/batch), status (success/failure)
	RowsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colkit_rows_mapped_total",
			Help: "Total number of rows passed through mapped functions",
		},
		[]string{"operation", "mode", "status"},
	)

	// BatchesMapped counts chunks handed to a mapped function.
	BatchesMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colkit_batches_mapped_total",
			Help: "Total number of chunks handed to mapped functions",
		},
		[]string{"operation"},
	)

	// OperationDuration tracks column operation latency in seconds.
	// Labels: operation, kind (backend kind of the input column)
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "colkit_operation_duration_seconds",
			Help:    "Column operation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-5, 10, 8),
		},
		[]string{"operation", "kind"},
	)

	// FilterSelectivity tracks the fraction of rows kept by filter.
	FilterSelectivity = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "colkit_filter_selectivity_ratio",
			Help:    "Fraction of rows kept by filter",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// CellMaterializations counts lazy cell loads.
	// Labels: cell (file/image/func), result (hit/miss/error)
	CellMaterializations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colkit_cell_materializations_total",
			Help: "Total number of lazy cell materializations",
		},
		[]string{"cell", "result"},
	)

	// ProvenanceEdges counts recorded lineage edges by operation.
	ProvenanceEdges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colkit_provenance_edges_total",
			Help: "Total number of provenance edges recorded",
		},
		[]string{"operation"},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the name the timer was created with
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveOperation stops the timer and records it against OperationDuration
func (t *Timer) ObserveOperation(kind string) time.Duration {
	d := t.Stop()
	OperationDuration.WithLabelValues(t.name, kind).Observe(d.Seconds())
	return d
}
