package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"searchgate/internal/cache"
	appConfig "searchgate/internal/config"
	"searchgate/internal/infra/db"
	"searchgate/internal/infra/extract"
	"searchgate/internal/infra/news"
	"searchgate/internal/infra/report"
	"searchgate/internal/infra/upstream"
	"searchgate/internal/observability/logging"
	"searchgate/internal/observability/metrics"
	"searchgate/internal/observability/slo"
	"searchgate/internal/observability/tracing"
	"searchgate/internal/resilience/circuitbreaker"
	searchUC "searchgate/internal/usecase/search"
	"searchgate/pkg/config"
	"searchgate/pkg/ratelimit"

	hhttp "searchgate/internal/handler/http"
	"searchgate/internal/handler/http/identity"
	"searchgate/internal/handler/http/requestid"
	hsearch "searchgate/internal/handler/http/search"
	htools "searchgate/internal/handler/http/tools"
)

// sloPublishInterval is how often the SLO tracker publishes its window.
const sloPublishInterval = 30 * time.Second

func main() {
	logger := initLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(ctx, logger, database, version)

	runServer(ctx, cancel, logger, components, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler         http.Handler
	Limiter         *ratelimit.Limiter
	CleanupInterval time.Duration
	CleanupMaxAge   time.Duration
	Tracker         *slo.Tracker
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(ctx context.Context, logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	pipelineConfig := appConfig.LoadPipelineConfig()

	// Tiered cache: Postgres primary, in-process LRU fallback with sticky
	// degradation until restart.
	primary := cache.NewPostgresStore(database)
	fallback := cache.NewLRUStore(cache.LRUStoreConfig{MaxEntries: pipelineConfig.FallbackMaxEntries})
	store := cache.NewTiered(ctx, primary, fallback, logger)

	upstreamConfig, err := upstream.LoadConfig()
	if err != nil {
		logger.Error("failed to load upstream configuration", slog.Any("error", err))
		os.Exit(1)
	}

	breaker := setupBreaker(logger, pipelineConfig)

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

	// Client-facing rate limiting, scoped per JWT subject or client IP.
	rateLimitSettings := config.LoadRateLimitSettings()
	var limiter *ratelimit.Limiter
	if rateLimitSettings.Enabled {
		limiter = ratelimit.New(ratelimit.Config{
			Limit:   rateLimitSettings.Limit,
			Window:  rateLimitSettings.Window,
			Metrics: ratelimit.NewPrometheusMetrics(),
		})
		logger.Info("rate limiting initialized",
			slog.Int("limit", rateLimitSettings.Limit),
			slog.Duration("window", rateLimitSettings.Window))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	tracker := slo.NewTracker()

	rootMux := setupRoutes(database, version, coordinator, store, breaker, limiter, logger)
	handler := applyMiddleware(logger, rootMux, limiter, tracker)

	return &ServerComponents{
		Handler:         handler,
		Limiter:         limiter,
		CleanupInterval: rateLimitSettings.CleanupInterval,
		CleanupMaxAge:   rateLimitSettings.CleanupMaxAge,
		Tracker:         tracker,
	}
}

// setupBreaker builds the upstream circuit breaker from the pipeline
// configuration and wires state transitions into metrics.
func setupBreaker(logger *slog.Logger, pipelineConfig appConfig.PipelineConfig) *circuitbreaker.CircuitBreaker {
	breakerConfig := circuitbreaker.SearchAPIConfig()
	breakerConfig.CallTimeout = pipelineConfig.BreakerCallTimeout
	breakerConfig.FailureThreshold = pipelineConfig.BreakerFailureThreshold
	breakerConfig.ResetTimeout = pipelineConfig.BreakerResetTimeout
	breakerConfig.MinRequests = uint32(pipelineConfig.BreakerMinRequests)   // #nosec G115 - validated positive small value
	breakerConfig.MaxRequests = uint32(pipelineConfig.BreakerHalfOpenMax)   // #nosec G115 - validated positive small value
	breakerConfig.OnStateChange = func(name, from, to string) {
		metrics.RecordBreakerTransition(name, to)
		logger.Warn("circuit breaker state changed",
			slog.String("name", name),
			slog.String("from", from),
			slog.String("to", to))
	}
	return circuitbreaker.New(breakerConfig)
}

// newSynthesizer selects the report synthesis provider from REPORT_PROVIDER.
// An unset or unknown provider falls back to the no-op synthesizer, which
// echoes the documents back without calling any API.
func newSynthesizer(logger *slog.Logger) report.Synthesizer {
	provider := os.Getenv("REPORT_PROVIDER")
	switch provider {
	case "claude":
		apiKey := os.Getenv("CLAUDE_API_KEY")
		if apiKey == "" {
			logger.Warn("CLAUDE_API_KEY not set, report synthesis falls back to noop")
			return report.NewNoOp()
		}
		return report.NewClaude(apiKey)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Warn("OPENAI_API_KEY not set, report synthesis falls back to noop")
			return report.NewNoOp()
		}
		openaiConfig, err := report.LoadOpenAIConfig()
		if err != nil {
			logger.Warn("invalid OpenAI configuration, report synthesis falls back to noop",
				slog.Any("error", err))
			return report.NewNoOp()
		}
		return report.NewOpenAI(apiKey, openaiConfig)
	case "":
		logger.Info("REPORT_PROVIDER not set, report synthesis uses noop provider")
		return report.NewNoOp()
	default:
		logger.Warn("unknown REPORT_PROVIDER, report synthesis falls back to noop",
			slog.String("provider", provider))
		return report.NewNoOp()
	}
}

// setupRoutes registers all HTTP routes.
func setupRoutes(
	database *sql.DB,
	version string,
	coordinator *searchUC.Coordinator,
	store *cache.Tiered,
	breaker *circuitbreaker.CircuitBreaker,
	limiter *ratelimit.Limiter,
	logger *slog.Logger,
) *http.ServeMux {
	rootMux := http.NewServeMux()

	hsearch.Register(rootMux, coordinator)
	htools.Register(rootMux,
		extract.NewExtractor(extract.LoadConfig()),
		news.NewFetcher(),
		newSynthesizer(logger),
	)

	rootMux.Handle("/health", &hhttp.HealthHandler{
		DB:      database,
		Cache:   store,
		Breaker: breaker,
		Limiter: limiter,
		Version: version,
	})
	rootMux.Handle("/ready", &hhttp.ReadyHandler{Cache: store})
	rootMux.Handle("/live", &hhttp.LiveHandler{})
	rootMux.Handle("/metrics", hhttp.MetricsHandler())

	return rootMux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): Request ID, Recovery, Logging, Tracing, Metrics,
// Security Headers, Rate Limit, Input Validation, Timeout, Body Limit.
func applyMiddleware(logger *slog.Logger, handler http.Handler, limiter *ratelimit.Limiter, tracker *slo.Tracker) http.Handler {
	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)

	// Rate limit scope: JWT subject when a valid token is presented,
	// client IP otherwise. An empty secret disables token scoping.
	resolver := identity.NewResolver(os.Getenv("RATELIMIT_JWT_SECRET"))

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.Timeout(requestTimeout)(middlewareChain)
	middlewareChain = hhttp.InputValidation()(middlewareChain)

	if limiter != nil {
		middlewareChain = hhttp.RateLimit(limiter, resolver.Scope)(middlewareChain)
	}

	middlewareChain = hhttp.SecurityHeaders()(middlewareChain)
	middlewareChain = hhttp.MetricsMiddleware(tracker, middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, components *ServerComponents, version string) {
	// Start background goroutines: SLO window publishing and rate limit
	// scope eviction.
	go components.Tracker.Run(ctx, sloPublishInterval)

	if components.Limiter != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.Limiter,
			components.CleanupInterval, components.CleanupMaxAge)
	}

	addr := config.GetEnvString("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Cancel background goroutines
	cancel()
	logger.Debug("background goroutines cancelled")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
