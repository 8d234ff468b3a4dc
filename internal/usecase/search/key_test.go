package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey_Deterministic(t *testing.T) {
	filters := map[string]string{"lang": "en", "site": "example.com"}

	first := BuildKey("golang cache", filters)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, BuildKey("golang cache", filters))
	}
}

func TestBuildKey_OrderIndependent(t *testing.T) {
	// Maps iterate in random order; build the same filter set repeatedly to
	// exercise different orders.
	want := BuildKey("q", map[string]string{
		"site": "a", "lang": "b", "region": "c", "recency": "d", "max_results": "5",
	})
	for i := 0; i < 50; i++ {
		filters := map[string]string{}
		for _, name := range RecognizedFilters() {
			filters[name] = map[string]string{
				"site": "a", "lang": "b", "region": "c", "recency": "d", "max_results": "5",
			}[name]
		}
		assert.Equal(t, want, BuildKey("q", filters))
	}
}

func TestBuildKey_DropsUnrecognizedFilters(t *testing.T) {
	base := BuildKey("q", map[string]string{"lang": "en"})
	withJunk := BuildKey("q", map[string]string{"lang": "en", "tracking_id": "xyz", "utm_source": "ad"})

	assert.Equal(t, base, withJunk)
}

func TestBuildKey_DistinctInputsDistinctKeys(t *testing.T) {
	cases := []struct {
		query   string
		filters map[string]string
	}{
		{"q", nil},
		{"q2", nil},
		{"q", map[string]string{"lang": "en"}},
		{"q", map[string]string{"lang": "de"}},
		{"q", map[string]string{"site": "en"}},
	}

	seen := map[string]string{}
	for _, tc := range cases {
		key := BuildKey(tc.query, tc.filters)
		label := fmt.Sprintf("%s %v", tc.query, tc.filters)
		if prev, dup := seen[key]; dup {
			t.Fatalf("key collision between %q and %q", prev, label)
		}
		seen[key] = label
	}
}

func TestBuildKey_ValueVsNameAmbiguity(t *testing.T) {
	// A filter value must not be confusable with a following filter pair.
	a := BuildKey("q", map[string]string{"lang": "en\nsite=x"})
	b := BuildKey("q", map[string]string{"lang": "en", "site": "x"})
	assert.NotEqual(t, a, b)
}

func TestRecognizedFilters_Sorted(t *testing.T) {
	names := RecognizedFilters()
	assert.Equal(t, []string{"lang", "max_results", "recency", "region", "site"}, names)
}
