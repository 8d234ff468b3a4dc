// Package pagination slices list endpoints into pages. Parameters come
// from the query string, bounds come from configuration, and responses
// carry a metadata block so clients can walk the pages.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	pkgconfig "searchgate/pkg/config"
)

// Config bounds what clients may request per page.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns page=1, limit=20, max=100.
func DefaultConfig() Config {
	return Config{DefaultPage: 1, DefaultLimit: 20, MaxLimit: 100}
}

// LoadFromEnv reads PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT
// and PAGINATION_MAX_LIMIT, falling back to DefaultConfig values.
func LoadFromEnv() Config {
	return Config{
		DefaultPage:  pkgconfig.GetEnvInt("PAGINATION_DEFAULT_PAGE", 1),
		DefaultLimit: pkgconfig.GetEnvInt("PAGINATION_DEFAULT_LIMIT", 20),
		MaxLimit:     pkgconfig.GetEnvInt("PAGINATION_MAX_LIMIT", 100),
	}
}

// Params is a validated page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// FromRequest reads page and limit from the query string. Absent
// parameters take the configured defaults; present ones must be sane or
// the whole request is rejected, since a silently corrected page would
// return data the client did not ask for.
func FromRequest(r *http.Request, cfg Config) (Params, error) {
	p := Params{Page: cfg.DefaultPage, Limit: cfg.DefaultLimit}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		p.Page = page
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > cfg.MaxLimit {
			return p, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", cfg.MaxLimit)
		}
		p.Limit = limit
	}
	return p, nil
}

// Validate reports whether the params fit within cfg.
func (p Params) Validate(cfg Config) error {
	if p.Page < 1 {
		return fmt.Errorf("page must be a positive integer")
	}
	if p.Limit < 1 || p.Limit > cfg.MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", cfg.MaxLimit)
	}
	return nil
}

// Clamp forces out-of-range params back into cfg's bounds. Used for
// programmatic callers; HTTP input goes through FromRequest instead.
func (p Params) Clamp(cfg Config) Params {
	if p.Page < 1 {
		p.Page = cfg.DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = cfg.DefaultLimit
	}
	if p.Limit > cfg.MaxLimit {
		p.Limit = cfg.MaxLimit
	}
	return p
}

// Offset converts the 1-based page into a slice or SQL offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns how many pages it takes to hold total items. An
// empty result still has one page so clients always get a valid range.
func TotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Metadata is the pagination block of a list response.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewMetadata describes where p lands within total items.
func NewMetadata(p Params, total int64) Metadata {
	return Metadata{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// Response is a page of items plus its metadata block.
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// NewResponse wraps one page of data with its metadata.
func NewResponse[T any](data []T, meta Metadata) Response[T] {
	return Response[T]{Data: data, Pagination: meta}
}
