package slo

import (
	"testing"
	"time"

	io_prometheus_client "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g interface {
	Write(*io_prometheus_client.Metric) error
}) float64 {
	t.Helper()
	metric := &io_prometheus_client.Metric{}
	if err := g.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetGauge().GetValue()
}

func TestTrackerPublish(t *testing.T) {
	availabilityGauge.Set(0)
	errorRateGauge.Set(0)

	tr := NewTracker()
	for i := 0; i < 98; i++ {
		tr.Observe(200, 10*time.Millisecond)
	}
	tr.Observe(500, 10*time.Millisecond)
	tr.Observe(503, 10*time.Millisecond)

	tr.publish()

	if got := gaugeValue(t, availabilityGauge); got != 0.98 {
		t.Errorf("availability = %v, want 0.98", got)
	}
	if got := gaugeValue(t, errorRateGauge); got != 0.02 {
		t.Errorf("error rate = %v, want 0.02", got)
	}
}

func TestTrackerPublishEmptyWindowKeepsGauges(t *testing.T) {
	availabilityGauge.Set(0.5)

	tr := NewTracker()
	tr.publish()

	if got := gaugeValue(t, availabilityGauge); got != 0.5 {
		t.Errorf("availability = %v, want unchanged 0.5", got)
	}
}

func TestTrackerCountersResetBetweenWindows(t *testing.T) {
	tr := NewTracker()
	tr.Observe(500, time.Millisecond)
	tr.publish()

	// A clean second window must not inherit the earlier error.
	tr.Observe(200, time.Millisecond)
	tr.publish()

	if got := gaugeValue(t, errorRateGauge); got != 0 {
		t.Errorf("error rate = %v, want 0", got)
	}
	if got := gaugeValue(t, availabilityGauge); got != 1.0 {
		t.Errorf("availability = %v, want 1.0", got)
	}
}

func TestTrackerPercentiles(t *testing.T) {
	latencyP95Gauge.Set(0)
	latencyP99Gauge.Set(0)

	tr := NewTracker()
	for i := 1; i <= 100; i++ {
		tr.Observe(200, time.Duration(i)*time.Millisecond)
	}
	tr.publish()

	if got := gaugeValue(t, latencyP95Gauge); got != 0.095 {
		t.Errorf("p95 = %v, want 0.095", got)
	}
	if got := gaugeValue(t, latencyP99Gauge); got != 0.099 {
		t.Errorf("p99 = %v, want 0.099", got)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"empty", nil, 0.95, 0},
		{"single", []float64{0.2}, 0.95, 0.2},
		{"two values p50", []float64{0.1, 0.2}, 0.50, 0.1},
		{"two values p99", []float64{0.1, 0.2}, 0.99, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentile(tt.sorted, tt.q); got != tt.want {
				t.Errorf("percentile(%v, %v) = %v, want %v", tt.sorted, tt.q, got, tt.want)
			}
		})
	}
}

func TestTrackerRingWraps(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < defaultSampleSize+10; i++ {
		tr.Observe(200, time.Millisecond)
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if !tr.filled {
		t.Error("ring should report filled after wrap")
	}
	if tr.next != 10 {
		t.Errorf("next = %d, want 10", tr.next)
	}
}
