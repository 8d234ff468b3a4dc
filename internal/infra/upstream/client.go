// Package upstream implements the HTTP client for the external search API.
// It performs a single call per invocation; retry policy, caching, and
// failure isolation live in the pipeline above it.
package upstream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"searchgate/internal/observability/metrics"
	"searchgate/internal/usecase/search"
)

// Client implements the search.Searcher interface against the provider's
// HTTP API.
//
// Features:
//   - Token bucket pacing of outbound calls (provider quota protection)
//   - Size limiting to prevent memory exhaustion
//   - Timeout protection against slow servers
//   - TLS 1.2+ enforced
//
// Thread safety: Client is safe for concurrent use.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
	config  Config
}

// NewClient creates a Client from the given configuration.
//
// Parameters:
//   - config: Validated client configuration (endpoint, key, pacing, limits)
//
// Returns:
//   - *Client: Ready-to-use search API client
func NewClient(config Config) *Client {
	return &Client{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
	}
}

// Search performs one GET against the search API and returns its JSON
// payload verbatim.
//
// The call first waits on the outbound token bucket (bounded by ctx), so a
// burst of cache misses cannot exceed the provider's quota. Any network
// failure, timeout, or non-2xx status is returned wrapped in
// search.ErrUpstream so the pipeline can count it against the breaker.
func (c *Client) Search(ctx context.Context, query string, filters map[string]string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: outbound pacing aborted: %v", search.ErrUpstream, err)
	}

	start := time.Now()
	payload, err := c.doSearch(ctx, query, filters)
	metrics.RecordUpstreamRequest(err == nil, time.Since(start))
	return payload, err
}

// doSearch performs the request itself; pacing and metrics live in Search.
func (c *Client) doSearch(ctx context.Context, query string, filters map[string]string) (json.RawMessage, error) {
	endpoint, err := c.buildURL(query, filters)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", search.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the error message, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: status %d: %s", search.ErrUpstream, resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", search.ErrUpstream, err)
	}
	if int64(len(body)) > c.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", search.ErrUpstream, c.config.MaxBodySize)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", search.ErrUpstream)
	}

	return json.RawMessage(body), nil
}

// buildURL assembles the request URL with the query and filters as
// parameters.
func (c *Client) buildURL(query string, filters map[string]string) (string, error) {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.config.BaseURL, err)
	}

	params := u.Query()
	params.Set("q", query)
	for name, value := range filters {
		params.Set(name, value)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
