// Package news fetches and normalizes RSS/Atom feeds so clients get a single
// JSON shape regardless of the feed dialect.
package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"searchgate/internal/resilience/retry"
)

// Item is one normalized feed entry.
type Item struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published"`
	Source    string    `json:"source"`
}

// Fetcher fetches feeds and normalizes their entries.
// Thread safety: Fetcher is safe for concurrent use; gofeed parsers are
// stateless per call.
type Fetcher struct {
	parser      *gofeed.Parser
	retryConfig retry.Config
	userAgent   string
}

// NewFetcher creates a feed Fetcher.
func NewFetcher() *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "searchgate/1.0"
	return &Fetcher{
		parser:      parser,
		retryConfig: retry.FeedFetchConfig(),
		userAgent:   parser.UserAgent,
	}
}

// Fetch retrieves the feed and returns up to limit entries, newest first.
// Entries without a parseable publication date sort last.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, limit int) ([]Item, error) {
	if err := validateFeedURL(feedURL); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	var feed *gofeed.Feed
	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		var parseErr error
		feed, parseErr = f.parser.ParseURLWithContext(feedURL, ctx)
		if parseErr == nil {
			return nil
		}
		// Surface the status code so the retry layer can tell a feed
		// host having a bad minute from a feed that is simply gone.
		var httpErr gofeed.HTTPError
		if errors.As(parseErr, &httpErr) {
			return &retry.StatusError{Code: httpErr.StatusCode, Detail: feedURL}
		}
		return fmt.Errorf("parse feed %s: %w", feedURL, parseErr)
	})
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := Item{
			Title:   entry.Title,
			Link:    entry.Link,
			Summary: entry.Description,
			Source:  feed.Title,
		}
		if entry.PublishedParsed != nil {
			item.Published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Published = *entry.UpdatedParsed
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// validateFeedURL rejects non-HTTP feed locations.
func validateFeedURL(feedURL string) error {
	u, err := url.Parse(feedURL)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid feed URL: scheme '%s' not allowed", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("invalid feed URL: empty hostname")
	}
	return nil
}
