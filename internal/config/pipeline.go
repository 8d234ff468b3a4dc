// Package config holds application-level configuration for the search
// gateway: the fetch pipeline tunables and the warmup query file.
package config

import (
	"time"

	"searchgate/pkg/config"
)

// PipelineConfig holds the tunables of the fetch pipeline: cache lifetimes,
// fallback sizing, and the upstream circuit breaker.
type PipelineConfig struct {
	// CacheTTL is the lifetime of a cached search payload.
	CacheTTL time.Duration

	// FallbackMaxEntries bounds the in-process LRU used while the primary
	// cache store is unavailable.
	FallbackMaxEntries int

	// RefreshTimeout bounds a background stale-while-revalidate fetch.
	RefreshTimeout time.Duration

	// RefreshAge is the minimum cached-entry age before a hit schedules a
	// background refresh. Zero means half the cache TTL.
	RefreshAge time.Duration

	// BreakerCallTimeout is the per-call deadline for upstream requests.
	BreakerCallTimeout time.Duration

	// BreakerFailureThreshold is the failure ratio that trips the breaker
	// (0.0 to 1.0).
	BreakerFailureThreshold float64

	// BreakerResetTimeout is how long the breaker stays open before letting
	// a trial call through.
	BreakerResetTimeout time.Duration

	// BreakerMinRequests is the minimum sample size before the failure
	// ratio is evaluated.
	BreakerMinRequests int

	// BreakerHalfOpenMax is the number of trial calls allowed while
	// half-open.
	BreakerHalfOpenMax int
}

// LoadPipelineConfig loads the pipeline configuration from environment
// variables. Missing or invalid values fall back to defaults with a warning.
//
// Environment variables:
//   - CACHE_TTL: Cache entry lifetime (default: 300s)
//   - CACHE_FALLBACK_MAX_ENTRIES: LRU fallback capacity (default: 256)
//   - CACHE_REFRESH_TIMEOUT: Background refresh deadline (default: 15s)
//   - CACHE_REFRESH_AGE: Entry age before a hit revalidates (default: CACHE_TTL/2)
//   - BREAKER_TIMEOUT: Per-call upstream deadline (default: 10s)
//   - BREAKER_ERROR_THRESHOLD_PCT: Failure percentage tripping the breaker (default: 50)
//   - BREAKER_RESET_TIMEOUT: Open state duration (default: 30s)
//   - BREAKER_MIN_REQUESTS: Sample size before tripping (default: 5)
//   - BREAKER_HALFOPEN_MAX: Trial calls while half-open (default: 1)
func LoadPipelineConfig() PipelineConfig {
	thresholdPct := config.GetEnvInt("BREAKER_ERROR_THRESHOLD_PCT", 50)
	if thresholdPct <= 0 || thresholdPct > 100 {
		thresholdPct = 50
	}

	fallbackEntries := config.GetEnvInt("CACHE_FALLBACK_MAX_ENTRIES", 256)
	if fallbackEntries <= 0 {
		fallbackEntries = 256
	}

	minRequests := config.GetEnvInt("BREAKER_MIN_REQUESTS", 5)
	if minRequests <= 0 {
		minRequests = 5
	}

	halfOpenMax := config.GetEnvInt("BREAKER_HALFOPEN_MAX", 1)
	if halfOpenMax <= 0 {
		halfOpenMax = 1
	}

	return PipelineConfig{
		CacheTTL:                config.GetEnvDuration("CACHE_TTL", 300*time.Second),
		FallbackMaxEntries:      fallbackEntries,
		RefreshTimeout:          config.GetEnvDuration("CACHE_REFRESH_TIMEOUT", 15*time.Second),
		RefreshAge:              config.GetEnvDuration("CACHE_REFRESH_AGE", 0),
		BreakerCallTimeout:      config.GetEnvDuration("BREAKER_TIMEOUT", 10*time.Second),
		BreakerFailureThreshold: float64(thresholdPct) / 100,
		BreakerResetTimeout:     config.GetEnvDuration("BREAKER_RESET_TIMEOUT", 30*time.Second),
		BreakerMinRequests:      minRequests,
		BreakerHalfOpenMax:      halfOpenMax,
	}
}
