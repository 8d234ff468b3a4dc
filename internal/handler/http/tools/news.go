package tools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"searchgate/internal/common/pagination"
	"searchgate/internal/handler/http/requestid"
	"searchgate/internal/handler/http/respond"
	"searchgate/internal/infra/news"
)

// maxFeedItems bounds how many entries one feed fetch will normalize.
// Pagination slices within this window.
const maxFeedItems = 1000

// NewsFetcher is the slice of the feed fetcher the handler needs.
type NewsFetcher interface {
	Fetch(ctx context.Context, feedURL string, limit int) ([]news.Item, error)
}

// NewsHandler serves GET /api/news.
type NewsHandler struct {
	Svc        NewsFetcher
	Pagination pagination.Config
}

// ServeHTTP fetches a feed and returns a paginated, newest-first view of
// its entries.
//
// Query parameters:
//   - feed: Feed URL (required)
//   - page: Page number (optional, 1-based)
//   - limit: Entries per page (optional, bounded by the pagination config)
func (h NewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := requestid.FromContext(r.Context())

	feedURL := r.URL.Query().Get("feed")
	if feedURL == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("feed query param required"))
		return
	}

	cfg := h.Pagination
	if cfg.MaxLimit == 0 {
		cfg = pagination.DefaultConfig()
	}
	params, err := pagination.FromRequest(r, cfg)
	if err != nil {
		pagination.RecordError("validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	items, err := h.Svc.Fetch(r.Context(), feedURL, maxFeedItems)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			respond.Error(w, http.StatusGatewayTimeout,
				errors.New("feed fetch timed out"))
			return
		}
		pagination.LogError(slog.Default(), reqID, params, err, "fetch")
		respond.SafeError(w, http.StatusBadGateway, err)
		return
	}

	page := sliceWindow(items, params.Offset(), params.Limit)
	meta := pagination.NewMetadata(params, int64(len(items)))

	pagination.RecordRequest(http.StatusOK, params.Page)
	pagination.RecordDuration("handler", time.Since(start).Seconds())
	pagination.UpdateTotalCount(int64(len(items)))
	pagination.LogResponse(slog.Default(), reqID, params, len(page), time.Since(start), http.StatusOK)
	respond.JSON(w, http.StatusOK, pagination.NewResponse(page, meta))
}

// sliceWindow returns items[offset : offset+limit], clamped to the slice.
// An out-of-range page yields an empty page, not an error.
func sliceWindow(items []news.Item, offset, limit int) []news.Item {
	if offset >= len(items) {
		return []news.Item{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
