package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadPipelineConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"CACHE_TTL", "CACHE_FALLBACK_MAX_ENTRIES", "CACHE_REFRESH_TIMEOUT",
		"BREAKER_TIMEOUT", "BREAKER_ERROR_THRESHOLD_PCT", "BREAKER_RESET_TIMEOUT",
		"BREAKER_MIN_REQUESTS", "BREAKER_HALFOPEN_MAX",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadPipelineConfig()

	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, 256, cfg.FallbackMaxEntries)
	assert.Equal(t, 15*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, 10*time.Second, cfg.BreakerCallTimeout)
	assert.Equal(t, 0.5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerResetTimeout)
	assert.Equal(t, 5, cfg.BreakerMinRequests)
	assert.Equal(t, 1, cfg.BreakerHalfOpenMax)
}

func TestLoadPipelineConfig_Overrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("BREAKER_ERROR_THRESHOLD_PCT", "75")
	t.Setenv("BREAKER_MIN_REQUESTS", "10")

	cfg := LoadPipelineConfig()

	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 0.75, cfg.BreakerFailureThreshold)
	assert.Equal(t, 10, cfg.BreakerMinRequests)
}

func TestLoadPipelineConfig_RejectsNonsense(t *testing.T) {
	t.Setenv("BREAKER_ERROR_THRESHOLD_PCT", "150")
	t.Setenv("CACHE_FALLBACK_MAX_ENTRIES", "-5")
	t.Setenv("BREAKER_HALFOPEN_MAX", "0")

	cfg := LoadPipelineConfig()

	assert.Equal(t, 0.5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 256, cfg.FallbackMaxEntries)
	assert.Equal(t, 1, cfg.BreakerHalfOpenMax)
}
