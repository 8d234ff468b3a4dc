package slo

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// defaultSampleSize bounds the latency sample ring. At typical request
// rates one minute of traffic fits comfortably; under heavy load the
// ring simply holds the most recent requests.
const defaultSampleSize = 4096

// Tracker accumulates request observations and periodically publishes
// the SLO gauges. It keeps a bounded ring of recent latencies for the
// percentile gauges and per-window counters for availability and error
// rate.
//
// Thread safety: Observe may be called concurrently with Run.
type Tracker struct {
	mu      sync.Mutex
	total   int64
	errors  int64
	samples []float64
	next    int
	filled  bool
}

// NewTracker creates a Tracker with the default latency sample size.
func NewTracker() *Tracker {
	return &Tracker{
		samples: make([]float64, defaultSampleSize),
	}
}

// Observe records one completed request. Status codes of 500 and above
// count against availability and error rate.
func (t *Tracker) Observe(status int, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if status >= 500 {
		t.errors++
	}

	t.samples[t.next] = duration.Seconds()
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.filled = true
	}
}

// Run publishes the SLO gauges every interval until ctx is cancelled.
// Windows with no traffic leave the gauges untouched.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("slo tracker started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("slo tracker stopped")
			return
		case <-ticker.C:
			t.publish()
		}
	}
}

// publish computes the window's ratios and percentiles and resets the
// per-window counters. The latency ring carries over between windows so
// percentiles stay meaningful at low request rates.
func (t *Tracker) publish() {
	t.mu.Lock()
	total, errors := t.total, t.errors
	t.total, t.errors = 0, 0

	n := t.next
	if t.filled {
		n = len(t.samples)
	}
	sorted := make([]float64, n)
	copy(sorted, t.samples[:n])
	t.mu.Unlock()

	if total > 0 {
		UpdateAvailability(float64(total-errors) / float64(total))
		UpdateErrorRate(float64(errors) / float64(total))
	}
	if len(sorted) > 0 {
		sort.Float64s(sorted)
		UpdateLatencyP95(percentile(sorted, 0.95))
		UpdateLatencyP99(percentile(sorted, 0.99))
	}
}

// percentile returns the q-th percentile of a sorted sample using
// nearest-rank selection.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q*float64(len(sorted))+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
