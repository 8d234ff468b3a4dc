package tools

import (
	"net/http"

	"searchgate/internal/common/pagination"
	"searchgate/internal/infra/report"
)

// Register registers the tool endpoints with the given mux.
func Register(mux *http.ServeMux, extractor Extractor, newsFetcher NewsFetcher, synthesizer report.Synthesizer) {
	mux.Handle("GET /api/extract", ExtractHandler{Svc: extractor})
	mux.Handle("GET /api/news", NewsHandler{Svc: newsFetcher, Pagination: pagination.LoadFromEnv()})
	mux.Handle("POST /api/report", ReportHandler{Svc: synthesizer})
}
