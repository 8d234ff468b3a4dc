// Package slo measures the service against its reliability targets and
// publishes the results as Prometheus gauges for dashboards and alerts.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reliability targets. The gauges below report measured values; alert
// rules compare them against these constants.
const (
	// AvailabilitySLO is the target uptime in percent. 99.9 allows
	// roughly 43 minutes of downtime per month.
	AvailabilitySLO = 99.9

	// LatencyP95SLO and LatencyP99SLO are latency targets in seconds.
	// Cache hits keep p95 low; the p99 budget absorbs upstream fetches.
	LatencyP95SLO = 0.200
	LatencyP99SLO = 0.500

	// ErrorRateSLO is the maximum acceptable ratio of 5xx responses.
	ErrorRateSLO = 0.001
)

var (
	availabilityGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Current availability ratio (0-1), target: 0.999",
	})
	latencyP95Gauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "Current p95 latency in seconds, target: 0.200",
	})
	latencyP99Gauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "Current p99 latency in seconds, target: 0.500",
	})
	errorRateGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "Current error rate ratio (0-1), target: 0.001",
	})
)

// UpdateAvailability sets the availability gauge, where ratio is the
// fraction of requests in the window that did not answer 5xx.
func UpdateAvailability(ratio float64) {
	availabilityGauge.Set(ratio)
}

// UpdateLatencyP95 sets the p95 latency gauge in seconds.
func UpdateLatencyP95(seconds float64) {
	latencyP95Gauge.Set(seconds)
}

// UpdateLatencyP99 sets the p99 latency gauge in seconds.
func UpdateLatencyP99(seconds float64) {
	latencyP99Gauge.Set(seconds)
}

// UpdateErrorRate sets the error rate gauge, where ratio is the
// fraction of requests in the window that answered 5xx.
func UpdateErrorRate(ratio float64) {
	errorRateGauge.Set(ratio)
}
