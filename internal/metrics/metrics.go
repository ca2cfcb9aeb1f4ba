// Package metrics holds the Prometheus collectors for supplier runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts finished runs by outcome.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wholesale_runs_total",
		Help: "Total number of supplier runs by status",
	}, []string{"supplier", "status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wholesale_run_duration_seconds",
		Help:    "Wall time of a supplier run",
		Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"supplier"})

	// stageDuration splits a run into load/categories/group/emit.
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wholesale_stage_duration_seconds",
		Help:    "Wall time of a pipeline stage",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"supplier", "stage"})

	productsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wholesale_products_emitted_total",
		Help: "Products written to canonical output by type",
	}, []string{"supplier", "type"})

	recordsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wholesale_feed_records_total",
		Help: "Records collected from supplier feeds",
	}, []string{"supplier", "feed"})

	recordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wholesale_feed_records_skipped_total",
		Help: "Malformed records skipped while reading feeds",
	}, []string{"supplier", "feed"})

	runsInProgress = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wholesale_runs_in_progress",
		Help: "Supplier runs currently executing",
	}, []string{"supplier"})

	lastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wholesale_last_success_timestamp_seconds",
		Help: "Unix time of the last successful run",
	}, []string{"supplier"})
)

// Recorder records run metrics.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RunStarted marks a supplier run as in progress.
func (m *Recorder) RunStarted(supplier string) {
	runsInProgress.WithLabelValues(supplier).Inc()
}

// RunFinished records the outcome of a run started with RunStarted.
func (m *Recorder) RunFinished(supplier string, success bool, d time.Duration) {
	runsInProgress.WithLabelValues(supplier).Dec()
	runDuration.WithLabelValues(supplier).Observe(d.Seconds())
	status := "failed"
	if success {
		status = "completed"
		lastSuccess.WithLabelValues(supplier).SetToCurrentTime()
	}
	runsTotal.WithLabelValues(supplier, status).Inc()
}

// Stage records the duration of one stage.
func (m *Recorder) Stage(supplier, stage string, d time.Duration) {
	stageDuration.WithLabelValues(supplier, stage).Observe(d.Seconds())
}

// FeedRead records what a feed reader collected and skipped.
func (m *Recorder) FeedRead(supplier, feed string, collected, skipped int) {
	recordsRead.WithLabelValues(supplier, feed).Add(float64(collected))
	recordsSkipped.WithLabelValues(supplier, feed).Add(float64(skipped))
}

// ProductsEmitted adds emitted product counts by type.
func (m *Recorder) ProductsEmitted(supplier string, simple, variable, variations int) {
	productsEmitted.WithLabelValues(supplier, "simple").Add(float64(simple))
	productsEmitted.WithLabelValues(supplier, "variable").Add(float64(variable))
	productsEmitted.WithLabelValues(supplier, "variation").Add(float64(variations))
}

// ClearSupplier drops the gauges of a supplier.
func (m *Recorder) ClearSupplier(supplier string) {
	runsInProgress.DeleteLabelValues(supplier)
	lastSuccess.DeleteLabelValues(supplier)
}
