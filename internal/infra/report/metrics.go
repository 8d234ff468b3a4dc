package report

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder defines the interface for recording report synthesis
// metrics. Abstracting the recorder keeps provider implementations testable
// with a mock and reusable across providers (Claude, OpenAI).
type MetricsRecorder interface {
	// RecordLength records the length of a generated report in characters.
	RecordLength(length int)

	// RecordLimitExceeded increments the counter when a report exceeds the
	// configured character limit.
	RecordLimitExceeded()

	// RecordDuration records the time taken to generate a report.
	RecordDuration(duration time.Duration)

	// RecordOutcome records whether the synthesis succeeded.
	RecordOutcome(provider string, success bool)
}

// PrometheusMetrics implements MetricsRecorder using Prometheus metrics.
// This is the production implementation.
type PrometheusMetrics struct {
	lengthHistogram   prometheus.Histogram
	exceededCounter   prometheus.Counter
	durationHistogram prometheus.Histogram
	outcomeCounter    *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// NewPrometheusMetrics returns the process-wide Prometheus recorder.
// Collectors are registered once; every provider instance shares them.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			lengthHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "report_length_chars",
				Help:    "Length of generated reports in characters",
				Buckets: prometheus.ExponentialBuckets(100, 2, 8),
			}),
			exceededCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "report_limit_exceeded_total",
				Help: "Reports exceeding the configured character limit",
			}),
			durationHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "report_synthesis_duration_seconds",
				Help:    "Time taken to synthesize a report",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
			outcomeCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "report_synthesis_total",
				Help: "Report synthesis attempts by provider and outcome",
			}, []string{"provider", "outcome"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength records the length of a generated report.
func (m *PrometheusMetrics) RecordLength(length int) {
	m.lengthHistogram.Observe(float64(length))
}

// RecordLimitExceeded increments the limit-exceeded counter.
func (m *PrometheusMetrics) RecordLimitExceeded() {
	m.exceededCounter.Inc()
}

// RecordDuration records the synthesis duration.
func (m *PrometheusMetrics) RecordDuration(duration time.Duration) {
	m.durationHistogram.Observe(duration.Seconds())
}

// RecordOutcome records a synthesis attempt result.
func (m *PrometheusMetrics) RecordOutcome(provider string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.outcomeCounter.WithLabelValues(provider, outcome).Inc()
}
