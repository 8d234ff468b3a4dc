package search

import "net/http"

// Register registers the search endpoint with the given mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /api/search", Handler{Svc: svc})
}
