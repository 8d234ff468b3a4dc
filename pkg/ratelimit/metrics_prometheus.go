package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
//
// All metrics use a custom registry for better testability and isolation;
// pass Registry() to promhttp.HandlerFor() to expose them, or register the
// collectors with the default registry via MustRegisterWith.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// requestsTotal tracks rate limit checks by limiter type and verdict.
	requestsTotal *prometheus.CounterVec

	// checkDuration tracks the duration of rate limit check operations.
	// Buckets target sub-5ms checks; the long tail flags lock contention.
	checkDuration *prometheus.HistogramVec

	// activeScopes tracks the number of scopes with a live window.
	activeScopes *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance with a custom registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total rate limit checks by limiter type and verdict",
		},
		[]string{"limiter_type", "verdict"},
	)

	checkDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rate_limit_check_duration_seconds",
			Help:    "Duration of rate limit check operations",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"limiter_type"},
	)

	activeScopes := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rate_limit_active_scopes",
			Help: "Current number of scopes with a live window",
		},
		[]string{"limiter_type"},
	)

	registry.MustRegister(requestsTotal, checkDuration, activeScopes)

	return &PrometheusMetrics{
		registry:      registry,
		requestsTotal: requestsTotal,
		checkDuration: checkDuration,
		activeScopes:  activeScopes,
	}
}

// Registry returns the custom registry holding the limiter metrics.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegisterWith additionally registers the collectors with the given
// registerer (typically prometheus.DefaultRegisterer) so the limiter shows
// up on the shared /metrics endpoint.
func (m *PrometheusMetrics) MustRegisterWith(r prometheus.Registerer) {
	r.MustRegister(m.requestsTotal, m.checkDuration, m.activeScopes)
}

// RecordAllowed records an admitted request.
func (m *PrometheusMetrics) RecordAllowed(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "allowed").Inc()
}

// RecordDenied records a rejected request.
func (m *PrometheusMetrics) RecordDenied(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "denied").Inc()
}

// RecordCheckDuration records the duration of a rate limit check.
func (m *PrometheusMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {
	m.checkDuration.WithLabelValues(limiterType).Observe(duration.Seconds())
}

// SetActiveScopes records the number of scopes with a live window.
func (m *PrometheusMetrics) SetActiveScopes(limiterType string, count int) {
	m.activeScopes.WithLabelValues(limiterType).Set(float64(count))
}
