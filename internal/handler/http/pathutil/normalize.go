// Package pathutil normalizes request paths for metrics labels.
package pathutil

import "strings"

// knownPaths is the set of routes the gateway serves. Every route is static,
// so normalization is an allowlist: a known path passes through unchanged and
// everything else collapses to a single label. Without this, a scan of random
// URLs would mint one metric series per probed path.
var knownPaths = map[string]struct{}{
	"/api/search":  {},
	"/api/extract": {},
	"/api/news":    {},
	"/api/report":  {},
	"/health":      {},
	"/ready":       {},
	"/live":        {},
	"/metrics":     {},
}

// OtherPath is the label unknown paths collapse to.
const OtherPath = "/other"

// NormalizePath maps a request path to a bounded metrics label.
// Known routes pass through unchanged; query strings and trailing slashes
// are stripped first so "/api/search?q=x" and "/api/search/" both count
// under "/api/search".
//
// Examples:
//
//	NormalizePath("/api/search")        // "/api/search"
//	NormalizePath("/api/search?q=go")   // "/api/search"
//	NormalizePath("/health/")           // "/health"
//	NormalizePath("/wp-admin/login")    // "/other"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if _, ok := knownPaths[path]; ok {
		return path
	}
	return OtherPath
}

// ExpectedCardinality returns the number of distinct path labels
// NormalizePath can emit. Useful for capacity planning and alerting on
// unexpected series growth.
func ExpectedCardinality() int {
	return len(knownPaths) + 1 // known routes plus OtherPath
}
