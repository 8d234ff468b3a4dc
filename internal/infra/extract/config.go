package extract

import (
	"time"

	"searchgate/pkg/config"
)

// Config holds the configuration for page extraction.
//
// Security settings:
//   - DenyPrivateIPs: Prevents SSRF attacks by blocking private IP addresses
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Prevents infinite redirect loops
//   - Timeout: Prevents resource starvation from slow servers
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Responses exceeding this limit are rejected to prevent memory
	// exhaustion. Enforced during response reading, not from the
	// Content-Length header. Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// Each redirect target is re-validated for SSRF. Default: 5
	MaxRedirects int

	// DenyPrivateIPs controls whether to block access to private IP
	// addresses. Should always be true in production. Default: true
	DenyPrivateIPs bool

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "searchgate/1.0",
	}
}

// LoadConfig loads the extraction configuration from environment variables,
// falling back to defaults.
//
// Environment variables:
//   - EXTRACT_TIMEOUT: Per-request timeout (default: 10s)
//   - EXTRACT_MAX_BODY_SIZE: Response size cap in bytes (default: 10MB)
//   - EXTRACT_MAX_REDIRECTS: Redirect limit (default: 5)
//   - EXTRACT_DENY_PRIVATE_IPS: SSRF guard toggle (default: true)
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = config.GetEnvDuration("EXTRACT_TIMEOUT", cfg.Timeout)
	cfg.MaxBodySize = int64(config.GetEnvInt("EXTRACT_MAX_BODY_SIZE", int(cfg.MaxBodySize)))
	cfg.MaxRedirects = config.GetEnvInt("EXTRACT_MAX_REDIRECTS", cfg.MaxRedirects)
	cfg.DenyPrivateIPs = config.GetEnvBool("EXTRACT_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)
	return cfg
}
