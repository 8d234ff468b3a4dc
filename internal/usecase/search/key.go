package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// recognizedFilters is the closed set of filter names that participate in
// cache-key derivation. Unrecognized names are dropped, so requests that
// differ only in junk parameters share a cache entry.
var recognizedFilters = map[string]struct{}{
	"site":        {},
	"lang":        {},
	"region":      {},
	"recency":     {},
	"max_results": {},
}

// RecognizedFilters returns the filter names that participate in cache-key
// derivation, sorted by name. Handlers use it to pick filters out of query
// parameters.
func RecognizedFilters() []string {
	names := make([]string, 0, len(recognizedFilters))
	for name := range recognizedFilters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildKey deterministically derives a cache key from the query and the
// recognized filters.
//
// It is a pure function: identical inputs produce identical keys regardless
// of map iteration order, because filters are sorted by name before hashing.
// Malformed input is validation's responsibility upstream; BuildKey never
// fails.
func BuildKey(query string, filters map[string]string) string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		if _, ok := recognizedFilters[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	// Length-prefix every component so a crafted value cannot collide with
	// a neighboring name/value pair.
	var b strings.Builder
	writeComponent(&b, query)
	for _, name := range names {
		writeComponent(&b, name)
		writeComponent(&b, filters[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return "search:" + hex.EncodeToString(sum[:])
}

func writeComponent(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
