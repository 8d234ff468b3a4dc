// Package report provides AI-powered report synthesis implementations.
// It includes adapters for Claude (Anthropic) and OpenAI APIs with reliability
// patterns. Given a question and a set of search result documents, a
// synthesizer produces a single prose report, with comprehensive observability
// through structured logging and Prometheus metrics.
package report

import (
	"context"
	"fmt"
	"strings"
)

// Document is one search result fed into report synthesis.
type Document struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Synthesizer produces a prose report answering a question from the given
// documents.
type Synthesizer interface {
	// Synthesize generates the report. The documents slice must not be empty.
	Synthesize(ctx context.Context, question string, docs []Document) (string, error)
}

// buildPrompt constructs the synthesis prompt shared by all providers.
// It instructs the model to answer within the character limit and to cite
// only the supplied documents.
func buildPrompt(question string, docs []Document, charLimit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer the following question in at most %d characters, using only the sources below. Cite sources by their number.\n\n", charLimit)
	fmt.Fprintf(&b, "Question: %s\n\nSources:\n", question)
	for i, doc := range docs {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, doc.Title, doc.URL, doc.Content)
	}
	return b.String()
}

// truncateDocs caps the combined content size so a pathological input cannot
// blow the provider's token limit. Each document keeps a proportional share.
func truncateDocs(docs []Document, maxChars int) []Document {
	total := 0
	for _, d := range docs {
		total += len(d.Content)
	}
	if total <= maxChars {
		return docs
	}

	out := make([]Document, len(docs))
	perDoc := maxChars / len(docs)
	for i, d := range docs {
		if len(d.Content) > perDoc {
			d.Content = d.Content[:perDoc] + "..."
		}
		out[i] = d
	}
	return out
}
