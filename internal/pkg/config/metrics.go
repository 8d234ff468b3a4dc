package config

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes configuration-loading health for one component, so an
// operator can alert on a process silently running on defaults.
type Metrics struct {
	loadTimestamp  prometheus.Gauge
	invalidTotal   *prometheus.CounterVec
	fallbackTotal  *prometheus.CounterVec
	fallbackActive prometheus.Gauge
}

// NewMetrics registers the config gauges and counters for the named
// component with the default registry. Call once per component per process.
func NewMetrics(component string) *Metrics {
	return &Metrics{
		loadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", component),
			Help: "Unix timestamp of the last configuration load",
		}),
		invalidTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", component),
			Help: "Total invalid configuration values by field",
		}, []string{"field"}),
		fallbackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", component),
			Help: "Total defaults substituted for invalid values by field",
		}, []string{"field"}),
		fallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", component),
			Help: "Whether the running config contains substituted defaults (0=no, 1=yes)",
		}),
	}
}

// Loaded stamps the time of a completed configuration load.
func (m *Metrics) Loaded() {
	m.loadTimestamp.Set(float64(time.Now().Unix()))
}

// Invalid counts one rejected value for field and the default substituted
// in its place.
func (m *Metrics) Invalid(field string) {
	m.invalidTotal.WithLabelValues(field).Inc()
	m.fallbackTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive flags whether any default was substituted during the
// last load.
func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.fallbackActive.Set(1)
		return
	}
	m.fallbackActive.Set(0)
}
