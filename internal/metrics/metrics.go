// Package metrics provides a small, backend-agnostic abstraction for recording
// run metrics from the word-frequency pipeline.
//
//   - Backend is a narrow interface: counters, duration observations and an
//     optional Flush.
//   - A global backend defaults to a no-op implementation, so every helper is
//     safe to call when nothing is configured.
//   - Concrete systems live in subpackages (prompush, datadog); the rest of
//     the code depends only on this package.
//
// Phases recorded with RecordStep are "read", "scan", "merge", "write",
// "compress" and "store".
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal    = "wordfreq_step_total"
	StepDuration = "wordfreq_step_duration_seconds"
	ItemsTotal   = "wordfreq_items_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures one pipeline phase: a counter by status plus its
// duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordCount adds delta to the item counter of the given kind. Typical
// kinds: "bytes", "words", "lines", "unique", "duplicates", "stored".
func RecordCount(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(ItemsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
