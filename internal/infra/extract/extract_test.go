package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Understanding Goroutines</title></head>
<body>
<article>
<h1>Understanding Goroutines</h1>
<p>Goroutines are lightweight threads managed by the Go runtime. They make
concurrent programming approachable because starting one costs only a few
kilobytes of stack.</p>
<p>Channels complement goroutines by letting them communicate without shared
memory. This combination is the foundation of Go concurrency.</p>
</article>
</body>
</html>`

func testExtractor(maxBody int64) *Extractor {
	cfg := DefaultConfig()
	// httptest servers listen on 127.0.0.1.
	cfg.DenyPrivateIPs = false
	if maxBody > 0 {
		cfg.MaxBodySize = maxBody
	}
	return NewExtractor(cfg)
}

func TestExtractor_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	article, err := testExtractor(0).Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Understanding Goroutines", article.Title)
	assert.Contains(t, article.Content, "lightweight threads")
	assert.Equal(t, server.URL, article.URL)
}

func TestExtractor_BlocksPrivateIPs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = true
	extractor := NewExtractor(cfg)

	_, err := extractor.Extract(context.Background(), "http://127.0.0.1:8080/page")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrivateIP)
}

func TestExtractor_RejectsBadScheme(t *testing.T) {
	_, err := testExtractor(0).Extract(context.Background(), "ftp://example.com/file")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestExtractor_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("a", 4096) + "</p></body></html>"))
	}))
	defer server.Close()

	_, err := testExtractor(1024).Extract(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestExtractor_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := testExtractor(0).Extract(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFallbackExtract(t *testing.T) {
	html := `<html><head><title>Fallback Page</title></head><body>
<p>First paragraph.</p>
<p>  </p>
<p>Second paragraph.</p>
</body></html>`

	article, err := testExtractor(0).fallbackExtract([]byte(html), "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, "Fallback Page", article.Title)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", article.Content)
}

func TestFallbackExtract_NoContent(t *testing.T) {
	_, err := testExtractor(0).fallbackExtract([]byte("<html><body></body></html>"), "https://example.com")
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL("https://example.com/page", false))
	assert.ErrorIs(t, validateURL("://bad", false), ErrInvalidURL)
	assert.ErrorIs(t, validateURL("file:///etc/passwd", false), ErrInvalidURL)
	assert.ErrorIs(t, validateURL("https://", false), ErrInvalidURL)
	assert.ErrorIs(t, validateURL("http://localhost/admin", true), ErrPrivateIP)
}
