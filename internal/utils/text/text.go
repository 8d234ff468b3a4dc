// Package text holds small text helpers shared by the report providers.
package text

import "unicode/utf8"

// CountRunes returns the length of s in Unicode code points. Report
// length limits are expressed in characters, not bytes, so CJK text and
// emoji must count one per rune.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}
