// Package extract fetches a web page and reduces it to clean article text
// using the Mozilla Readability algorithm, with a goquery fallback for pages
// Readability cannot parse.
package extract

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"searchgate/internal/resilience/circuitbreaker"
)

// Article is the result of extracting a page.
type Article struct {
	Title   string `json:"title"`
	Byline  string `json:"byline,omitempty"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
	URL     string `json:"url"`
}

// Extractor fetches pages and extracts their article content.
//
// Features:
//   - SSRF prevention via URL validation
//   - Circuit breaker for fault tolerance
//   - Size limiting to prevent memory exhaustion
//   - Redirect validation for security
//
// Thread safety: Extractor is safe for concurrent use.
type Extractor struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewExtractor creates an Extractor with the given configuration.
// Each redirect target is validated for security (SSRF check).
func NewExtractor(config Config) *Extractor {
	e := &Extractor{
		circuitBreaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "page-extract",
			MaxRequests:      5,
			Interval:         60 * time.Second,
			ResetTimeout:     60 * time.Second,
			CallTimeout:      config.Timeout,
			FailureThreshold: 0.6,
			MinRequests:      5,
		}),
		config: config,
	}

	e.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= e.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), e.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return e
}

// Extract fetches the page and returns its article content.
//
// The fetch process:
//  1. Validates URL for security (SSRF prevention)
//  2. Executes HTTP request through circuit breaker
//  3. Enforces size limit while reading the response
//  4. Extracts article content using Readability
//  5. Falls back to a goquery title/paragraph scrape if Readability fails
func (e *Extractor) Extract(ctx context.Context, urlStr string) (*Article, error) {
	if err := validateURL(urlStr, e.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	result, err := e.circuitBreaker.Execute(ctx, func(callCtx context.Context) (any, error) {
		return e.doExtract(callCtx, urlStr)
	})
	if err != nil {
		return nil, err
	}

	return result.(*Article), nil
}

// doExtract performs the HTTP request and content extraction.
func (e *Extractor) doExtract(ctx context.Context, urlStr string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", e.config.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, e.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > e.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			ErrBodyTooLarge, len(htmlBytes), e.config.MaxBodySize)
	}

	// The final URL may have changed due to redirects.
	pageURL, err := url.Parse(urlStr)
	if err != nil {
		pageURL = nil
	}
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return e.fallbackExtract(htmlBytes, urlStr)
	}

	return &Article{
		Title:   article.Title,
		Byline:  article.Byline,
		Content: article.TextContent,
		Excerpt: article.Excerpt,
		URL:     urlStr,
	}, nil
}

// fallbackExtract scrapes the title and paragraph text with goquery when
// Readability cannot make sense of the page.
func (e *Extractor) fallbackExtract(htmlBytes []byte, urlStr string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	content := strings.Join(paragraphs, "\n\n")
	if content == "" {
		return nil, fmt.Errorf("no extractable content found")
	}

	return &Article{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Content: content,
		URL:     urlStr,
	}, nil
}
