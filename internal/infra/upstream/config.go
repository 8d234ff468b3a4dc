package upstream

import (
	"fmt"
	"time"

	"searchgate/pkg/config"
)

// Config holds the settings of the upstream search API client.
type Config struct {
	// BaseURL is the API endpoint, e.g. "https://api.searchprovider.example/v1/search".
	BaseURL string

	// APIKey authenticates requests. Required; the process refuses to start
	// without it.
	APIKey string

	// Timeout is the overall HTTP client timeout per request.
	Timeout time.Duration

	// MaxBodySize limits how many response bytes are read (bytes).
	MaxBodySize int64

	// RequestsPerSecond paces outbound calls so the process stays inside the
	// provider's own quota regardless of how many clients it fronts.
	RequestsPerSecond float64

	// Burst is the token bucket burst size for outbound pacing.
	Burst int

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the client defaults. The API key is intentionally
// empty; it has no sensible default.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.searchprovider.example/v1/search",
		Timeout:           10 * time.Second,
		MaxBodySize:       5 * 1024 * 1024,
		RequestsPerSecond: 5,
		Burst:             5,
		UserAgent:         "searchgate/1.0",
	}
}

// LoadConfig loads the client configuration from environment variables.
//
// SEARCH_API_KEY is required and its absence is a startup error; everything
// else falls back to DefaultConfig values with a warning on invalid input.
//
// Environment variables:
//   - SEARCH_API_KEY: API key (required)
//   - SEARCH_API_BASE_URL: Endpoint URL (default: provider v1 search)
//   - SEARCH_API_TIMEOUT: Per-request timeout (default: 10s)
//   - SEARCH_API_MAX_BODY_SIZE: Response size cap in bytes (default: 5MiB)
//   - SEARCH_API_RPS: Outbound requests per second (default: 5)
//   - SEARCH_API_BURST: Outbound burst size (default: 5)
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	cfg.APIKey = config.GetEnvString("SEARCH_API_KEY", "")
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("SEARCH_API_KEY environment variable is required")
	}

	cfg.BaseURL = config.GetEnvString("SEARCH_API_BASE_URL", cfg.BaseURL)
	cfg.Timeout = config.GetEnvDuration("SEARCH_API_TIMEOUT", cfg.Timeout)
	cfg.MaxBodySize = int64(config.GetEnvInt("SEARCH_API_MAX_BODY_SIZE", int(cfg.MaxBodySize)))
	cfg.RequestsPerSecond = float64(config.GetEnvInt("SEARCH_API_RPS", int(cfg.RequestsPerSecond)))
	cfg.Burst = config.GetEnvInt("SEARCH_API_BURST", cfg.Burst)

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the client cannot run with.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("max body size must be positive, got %d", c.MaxBodySize)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %g", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("burst must be positive, got %d", c.Burst)
	}
	return nil
}
