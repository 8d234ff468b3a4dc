package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"searchgate/internal/cache"
	appConfig "searchgate/internal/config"
	"searchgate/internal/infra/db"
	"searchgate/internal/infra/upstream"
	workerPkg "searchgate/internal/infra/worker"
	"searchgate/internal/observability/logging"
	"searchgate/internal/resilience/circuitbreaker"
	searchUC "searchgate/internal/usecase/search"
)

func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM cache_entries LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("sweep_schedule", workerConfig.SweepSchedule),
		slog.String("warmup_schedule", workerConfig.WarmupSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("sweep_timeout", workerConfig.SweepTimeout),
		slog.Duration("warmup_timeout", workerConfig.WarmupTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	primary := cache.NewPostgresStore(database)

	// Warmup reuses the full fetch pipeline so refreshed entries go through
	// the same breaker and pacing as live traffic.
	warmup := setupWarmup(ctx, logger, database, workerConfig)

	startMetricsServer(ctx, logger)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(ctx, logger, primary, warmup, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

// warmupRunner holds everything the warmup job needs. A nil runner means
// warmup is disabled.
type warmupRunner struct {
	coordinator *searchUC.Coordinator
	queries     []appConfig.WarmupQuery
}

// setupWarmup builds the fetch pipeline for the warmup job. Warmup is
// disabled, with a warning, when the upstream client cannot be configured
// or the warmup file cannot be loaded.
func setupWarmup(ctx context.Context, logger *slog.Logger, database *sql.DB, workerConfig *workerPkg.WorkerConfig) *warmupRunner {
	warmupConfig, err := appConfig.LoadWarmupConfig(workerConfig.WarmupConfigPath)
	if err != nil {
		logger.Warn("warmup disabled: failed to load warmup config",
			slog.String("path", workerConfig.WarmupConfigPath),
			slog.Any("error", err))
		return nil
	}

	upstreamConfig, err := upstream.LoadConfig()
	if err != nil {
		logger.Warn("warmup disabled: upstream client not configured", slog.Any("error", err))
		return nil
	}

	pipelineConfig := appConfig.LoadPipelineConfig()

	primary := cache.NewPostgresStore(database)
	fallback := cache.NewLRUStore(cache.LRUStoreConfig{MaxEntries: pipelineConfig.FallbackMaxEntries})
	store := cache.NewTiered(ctx, primary, fallback, logger)

	breakerConfig := circuitbreaker.SearchAPIConfig()
	breakerConfig.CallTimeout = pipelineConfig.BreakerCallTimeout
	breakerConfig.FailureThreshold = pipelineConfig.BreakerFailureThreshold
	breakerConfig.ResetTimeout = pipelineConfig.BreakerResetTimeout
	breakerConfig.MinRequests = uint32(pipelineConfig.BreakerMinRequests)
	breakerConfig.MaxRequests = uint32(pipelineConfig.BreakerHalfOpenMax)
	breaker := circuitbreaker.New(breakerConfig)

	coordinator := searchUC.NewCoordinator(
		store,
		breaker,
		upstream.NewClient(upstreamConfig),
		logger,
		searchUC.CoordinatorConfig{
			TTL:            pipelineConfig.CacheTTL,
			RefreshTimeout: pipelineConfig.RefreshTimeout,
			RefreshAge:     pipelineConfig.RefreshAge,
		},
	)

	logger.Info("warmup enabled", slog.Int("queries", len(warmupConfig.Queries)))
	return &warmupRunner{coordinator: coordinator, queries: warmupConfig.Queries}
}

// startCronWorker starts the cron scheduler with the sweep and warmup jobs
// and blocks until the context is cancelled.
func startCronWorker(ctx context.Context, logger *slog.Logger, primary *cache.PostgresStore, warmup *warmupRunner, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.SweepSchedule, func() {
		runSweepJob(logger, primary, cfg, metrics)
	}); err != nil {
		logger.Error("failed to add sweep job", slog.Any("error", err))
		os.Exit(1)
	}

	if warmup != nil {
		if _, err := c.AddFunc(cfg.WarmupSchedule, func() {
			runWarmupJob(logger, warmup, cfg, metrics)
		}); err != nil {
			logger.Error("failed to add warmup job", slog.Any("error", err))
			os.Exit(1)
		}
	}

	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("sweep_schedule", cfg.SweepSchedule),
		slog.String("warmup_schedule", cfg.WarmupSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	healthServer.SetReady(false)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("cron jobs did not finish before shutdown deadline")
	}
	logger.Info("worker stopped")
}

// runSweepJob deletes expired rows from the primary cache store.
func runSweepJob(logger *slog.Logger, primary *cache.PostgresStore, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("cache sweep started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepTimeout)
	defer cancel()

	removed, err := primary.Sweep(ctx)
	duration := time.Since(startTime)
	metrics.RecordJobDuration("sweep", duration.Seconds())
	if err != nil {
		logger.Error("cache sweep failed", slog.Any("error", err))
		metrics.RecordJobRun("sweep", "failure")
		return
	}

	metrics.RecordJobRun("sweep", "success")
	metrics.RecordSweptEntries(removed)
	metrics.RecordLastSuccess("sweep")

	logger.Info("cache sweep completed",
		slog.Int64("removed", removed),
		slog.Duration("duration", duration))
}

// runWarmupJob refreshes every configured query through the fetch pipeline.
// Individual query failures are logged and do not abort the run; the run
// counts as failed only when every query failed.
func runWarmupJob(logger *slog.Logger, warmup *warmupRunner, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("cache warmup started", slog.Int("queries", len(warmup.queries)))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.WarmupTimeout)
	defer cancel()

	var warmed int
	for _, q := range warmup.queries {
		if ctx.Err() != nil {
			logger.Warn("cache warmup aborted by timeout", slog.Int("warmed", warmed))
			break
		}
		if _, err := warmup.coordinator.Fetch(ctx, q.Query, q.Filters); err != nil {
			logger.Warn("warmup query failed",
				slog.String("query", q.Query),
				slog.Any("error", err))
			continue
		}
		warmed++
	}

	duration := time.Since(startTime)
	metrics.RecordJobDuration("warmup", duration.Seconds())
	metrics.RecordWarmedQueries(warmed)

	if warmed == 0 && len(warmup.queries) > 0 {
		metrics.RecordJobRun("warmup", "failure")
		logger.Error("cache warmup failed for all queries", slog.Duration("duration", duration))
		return
	}

	metrics.RecordJobRun("warmup", "success")
	metrics.RecordLastSuccess("warmup")
	logger.Info("cache warmup completed",
		slog.Int("warmed", warmed),
		slog.Int("total", len(warmup.queries)),
		slog.Duration("duration", duration))
}
