// Package metrics records operational metrics of a pipeline run behind a
// small Backend interface.
//
// The process-wide backend defaults to a no-op, so the helpers are always
// safe to call. Concrete systems live in subpackages (prompush, datadog) and
// are installed by the CLI with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the helpers below.
const (
	StepTotal           = "ecompipe_step_total"
	StepDurationSeconds = "ecompipe_step_duration_seconds"
	RecordsTotal        = "ecompipe_records_total"
	SQLRowsTotal        = "ecompipe_sql_rows_total"
)

// Pipeline stages passed to RecordStep.
const (
	StepIngest    = "ingest"
	StepNormalize = "normalize"
	StepReconcile = "reconcile"
	StepAnalytics = "analytics"
	StepQuality   = "quality"
	StepOutput    = "output"
)

// Row kinds passed to RecordRow.
const (
	RowsSales              = "sales"
	RowsMerged             = "merged"
	RowsUnmatchedCatalog   = "unmatched_catalog"
	RowsUnmatchedInventory = "unmatched_inventory"
	RowsQualityFailed      = "quality_failed"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records one duration-style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend buffers at all.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. Nil restores the no-op backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a pipeline stage and observes its
// duration, labelled success or failure by err.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// Time runs fn as step and records it with RecordStep. fn's error is
// returned unchanged.
func Time(job, step string, fn func() error) error {
	start := time.Now()
	err := fn()
	RecordStep(job, step, err, time.Since(start))
	return err
}

// RecordRow adds delta rows of kind (one of the Rows* constants). Zero and
// negative deltas are dropped.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordSQLRows adds the rows loaded into one database table.
func RecordSQLRows(job, table string, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(SQLRowsTotal, float64(n), Labels{"job": job, "table": table})
}
