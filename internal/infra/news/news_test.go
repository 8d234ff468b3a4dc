package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example Tech Blog</title>
<link>https://example.com</link>
<item>
  <title>Older Post</title>
  <link>https://example.com/older</link>
  <description>The older entry.</description>
  <pubDate>Mon, 05 Jan 2026 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Newer Post</title>
  <link>https://example.com/newer</link>
  <description>The newer entry.</description>
  <pubDate>Tue, 06 Jan 2026 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Undated Post</title>
  <link>https://example.com/undated</link>
</item>
</channel>
</rss>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetcher_Fetch(t *testing.T) {
	server := serveFeed(t, rssFixture)
	defer server.Close()

	items, err := NewFetcher().Fetch(context.Background(), server.URL, 10)

	require.NoError(t, err)
	require.Len(t, items, 3)
	// Newest first, undated entries last.
	assert.Equal(t, "Newer Post", items[0].Title)
	assert.Equal(t, "Older Post", items[1].Title)
	assert.Equal(t, "Undated Post", items[2].Title)
	assert.Equal(t, "Example Tech Blog", items[0].Source)
	assert.Equal(t, "The newer entry.", items[1].Summary)
}

func TestFetcher_LimitApplied(t *testing.T) {
	server := serveFeed(t, rssFixture)
	defer server.Close()

	items, err := NewFetcher().Fetch(context.Background(), server.URL, 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Newer Post", items[0].Title)
}

func TestFetcher_DefaultLimit(t *testing.T) {
	server := serveFeed(t, rssFixture)
	defer server.Close()

	items, err := NewFetcher().Fetch(context.Background(), server.URL, 0)

	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestFetcher_InvalidURL(t *testing.T) {
	fetcher := NewFetcher()

	_, err := fetcher.Fetch(context.Background(), "ftp://example.com/feed", 10)
	assert.Error(t, err)

	_, err = fetcher.Fetch(context.Background(), "https://", 10)
	assert.Error(t, err)
}

func TestFetcher_MalformedFeed(t *testing.T) {
	server := serveFeed(t, "this is not xml")
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), server.URL, 10)
	assert.Error(t, err)
}
