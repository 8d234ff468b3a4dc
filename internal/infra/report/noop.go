package report

import (
	"context"
	"fmt"
	"strings"
)

// NoOp is a synthesizer that lists the document titles without calling any
// AI provider. This is useful for testing and development when no API key is
// configured.
type NoOp struct{}

// NewNoOp creates a new NoOp synthesizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Synthesize returns a plain listing of the sources instead of a generated
// report.
func (n *NoOp) Synthesize(_ context.Context, question string, docs []Document) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Sources for %q:\n", question)
	for i, doc := range docs {
		fmt.Fprintf(&b, "[%d] %s (%s)\n", i+1, doc.Title, doc.URL)
	}
	return b.String(), nil
}
