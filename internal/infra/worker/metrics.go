package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"searchgate/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the maintenance worker.
// It embeds the shared config-loading metrics (worker_config_*) and adds
// job-level metrics for the sweep and warmup schedules:
//   - worker_job_runs_total: Total job runs by job and status
//   - worker_job_duration_seconds: Duration histogram by job
//   - worker_swept_entries_total: Total expired cache rows deleted
//   - worker_warmed_queries_total: Total warmup queries refreshed
//   - worker_job_last_success_timestamp: Unix timestamp of last success by job
type WorkerMetrics struct {
	*config.Metrics

	// JobRunsTotal counts job runs.
	// Labels: job (sweep, warmup), status (success, failure)
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures job execution time.
	// Labels: job (sweep, warmup)
	JobDurationSeconds *prometheus.HistogramVec

	// SweptEntriesTotal counts expired cache rows removed by the sweep.
	SweptEntriesTotal prometheus.Counter

	// WarmedQueriesTotal counts queries refreshed by the warmup job.
	WarmedQueriesTotal prometheus.Counter

	// JobLastSuccessTimestamp records the last successful run per job.
	// Labels: job (sweep, warmup)
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates a WorkerMetrics instance. Metrics register
// with the default registry on creation via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		Metrics: config.NewMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of worker job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of worker job execution in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 30, 60, 300, 600},
		}, []string{"job"}),

		SweptEntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_swept_entries_total",
			Help: "Total number of expired cache entries deleted by the sweep job",
		}),

		WarmedQueriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_warmed_queries_total",
			Help: "Total number of queries refreshed by the warmup job",
		}),

		JobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// RecordJobRun increments the run counter for the given job.
// Status should be either "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the execution time of the given job.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordSweptEntries adds the number of rows deleted by one sweep run.
func (m *WorkerMetrics) RecordSweptEntries(count int64) {
	m.SweptEntriesTotal.Add(float64(count))
}

// RecordWarmedQueries adds the number of queries refreshed by one warmup run.
func (m *WorkerMetrics) RecordWarmedQueries(count int) {
	m.WarmedQueriesTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful
// completion of the given job.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).Set(float64(time.Now().Unix()))
}
