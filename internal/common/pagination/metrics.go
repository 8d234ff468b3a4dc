package pagination

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_pagination_requests_total",
		Help: "Total number of pagination requests",
	}, []string{"status", "page_range"})

	durationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "news_pagination_duration_seconds",
		Help:    "Request duration distribution",
		Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
	}, []string{"operation"})

	feedItemCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "news_feed_item_count",
		Help: "Number of entries in the most recently fetched feed",
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_pagination_errors_total",
		Help: "Total number of pagination errors",
	}, []string{"type"})
)

// RecordRequest counts one served page. Pages are bucketed so the label
// cardinality stays flat no matter how deep clients scroll.
func RecordRequest(status, page int) {
	requestsTotal.WithLabelValues(strconv.Itoa(status), pageBucket(page)).Inc()
}

// RecordDuration observes how long an operation took, in seconds.
func RecordDuration(operation string, seconds float64) {
	durationSeconds.WithLabelValues(operation).Observe(seconds)
}

// UpdateTotalCount records the size of the most recently fetched feed.
func UpdateTotalCount(count int64) {
	feedItemCount.Set(float64(count))
}

// RecordError counts one failed request by kind, e.g. "validation".
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

func pageBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}

// LogResponse emits the per-request summary line for a served page.
func LogResponse(logger *slog.Logger, requestID string, p Params, returned int, duration time.Duration, status int) {
	logger.Info("paginated response",
		"request_id", requestID,
		"page", p.Page,
		"limit", p.Limit,
		"returned_count", returned,
		"duration_ms", duration.Milliseconds(),
		"status", status)
}

// LogError emits a structured line for a failed page request.
func LogError(logger *slog.Logger, requestID string, p Params, err error, kind string) {
	logger.Error("pagination error",
		"request_id", requestID,
		"page", p.Page,
		"limit", p.Limit,
		"error", err.Error(),
		"error_type", kind)
}
