package worker

import (
	"fmt"
	"log/slog"
	"time"

	"searchgate/internal/pkg/config"
)

// WorkerConfig holds the configuration for the maintenance worker.
// The worker runs two scheduled jobs: a cache sweep that deletes expired
// rows from the primary store, and a warmup pass that refreshes the
// configured queries through the fetch pipeline.
//
// Every field has a default and a validation rule, and loading is
// fail-open: an invalid value is replaced by its default with a warning so
// the scheduled maintenance keeps running.
type WorkerConfig struct {
	// SweepSchedule is the cron expression for the cache sweep job.
	// Format: "minute hour day month weekday"
	// Default: "*/10 * * * *" (every 10 minutes)
	SweepSchedule string

	// WarmupSchedule is the cron expression for the cache warmup job.
	// Default: "0 * * * *" (hourly)
	WarmupSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "UTC", "Asia/Tokyo", "America/New_York"
	// Default: "UTC"
	Timezone string

	// SweepTimeout bounds one sweep run.
	// Default: 5 minutes
	SweepTimeout time.Duration

	// WarmupTimeout bounds one warmup run across all queries.
	// Default: 10 minutes
	WarmupTimeout time.Duration

	// WarmupConfigPath is the YAML file listing the queries to keep warm.
	// An empty or missing file disables warmup.
	// Default: "warmup.yaml"
	WarmupConfigPath string

	// HealthPort is the port for the worker's health and metrics server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production-ready defaults.
// Sweeping every 10 minutes keeps the cache table from accumulating
// expired rows; warming hourly keeps the configured queries inside
// their TTL most of the time without hammering the provider.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		SweepSchedule:    "*/10 * * * *",
		WarmupSchedule:   "0 * * * *",
		Timezone:         "UTC",
		SweepTimeout:     5 * time.Minute,
		WarmupTimeout:    10 * time.Minute,
		WarmupConfigPath: "warmup.yaml",
		HealthPort:       9091,
	}
}

// Validate checks the configuration. All failures are collected and
// returned together so an operator fixes one round of mistakes, not one
// mistake per restart.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.CronSchedule(c.SweepSchedule); err != nil {
		errs = append(errs, fmt.Errorf("sweep schedule: %w", err))
	}
	if err := config.CronSchedule(c.WarmupSchedule); err != nil {
		errs = append(errs, fmt.Errorf("warmup schedule: %w", err))
	}
	if err := config.Timezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.Positive(c.SweepTimeout); err != nil {
		errs = append(errs, fmt.Errorf("sweep timeout: %w", err))
	}
	if err := config.Positive(c.WarmupTimeout); err != nil {
		errs = append(errs, fmt.Errorf("warmup timeout: %w", err))
	}
	if err := config.IntBetween(1024, 65535)(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables.
// Each invalid value falls back to its default, logs a warning and counts
// on the config metrics; loading itself never fails.
//
// Environment variables:
//   - SWEEP_CRON_SCHEDULE: Cron expression (default: "*/10 * * * *")
//   - WARMUP_CRON_SCHEDULE: Cron expression (default: "0 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - SWEEP_TIMEOUT: Duration string, e.g., "5m" (default: 5 minutes)
//   - WARMUP_TIMEOUT: Duration string, e.g., "10m" (default: 10 minutes)
//   - WARMUP_CONFIG_PATH: Path to the warmup YAML (default: "warmup.yaml")
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	def := DefaultConfig()
	cfg := def
	fell := false

	note := func(field, warning string) {
		fell = true
		metrics.Invalid(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	sweep := config.String("SWEEP_CRON_SCHEDULE", def.SweepSchedule, config.CronSchedule)
	cfg.SweepSchedule = sweep.Value
	if sweep.FellBack() {
		note("sweep_schedule", sweep.Warning)
	}

	warm := config.String("WARMUP_CRON_SCHEDULE", def.WarmupSchedule, config.CronSchedule)
	cfg.WarmupSchedule = warm.Value
	if warm.FellBack() {
		note("warmup_schedule", warm.Warning)
	}

	tz := config.String("WORKER_TIMEZONE", def.Timezone, config.Timezone)
	cfg.Timezone = tz.Value
	if tz.FellBack() {
		note("timezone", tz.Warning)
	}

	sweepTO := config.Duration("SWEEP_TIMEOUT", def.SweepTimeout,
		config.DurationBetween(10*time.Second, time.Hour))
	cfg.SweepTimeout = sweepTO.Value
	if sweepTO.FellBack() {
		note("sweep_timeout", sweepTO.Warning)
	}

	warmTO := config.Duration("WARMUP_TIMEOUT", def.WarmupTimeout,
		config.DurationBetween(10*time.Second, 2*time.Hour))
	cfg.WarmupTimeout = warmTO.Value
	if warmTO.FellBack() {
		note("warmup_timeout", warmTO.Warning)
	}

	cfg.WarmupConfigPath = config.String("WARMUP_CONFIG_PATH", def.WarmupConfigPath, nil).Value

	port := config.Int("WORKER_HEALTH_PORT", def.HealthPort, config.IntBetween(1024, 65535))
	cfg.HealthPort = port.Value
	if port.FellBack() {
		note("health_port", port.Warning)
	}

	metrics.SetFallbackActive(fell)
	metrics.Loaded()

	return &cfg, nil
}
