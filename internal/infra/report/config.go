package report

import "fmt"

const (
	// minCharLimit is the minimum allowed character limit for reports.
	minCharLimit = 100

	// maxCharLimit is the maximum allowed character limit for reports.
	maxCharLimit = 5000

	// maxInputChars caps the combined document content fed to a provider.
	maxInputChars = 10000
)

// ValidateCharacterLimit validates that the character limit is within the
// valid range (100-5000). Returns an error with a descriptive message if the
// limit is out of range.
func ValidateCharacterLimit(limit int) error {
	if limit < minCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minCharLimit)
	}
	if limit > maxCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxCharLimit)
	}
	return nil
}
