package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/sagekit/sage/internal/rag"
)

// maxPageRunes bounds how much of each page goes into the summary prompt so a
// single long article cannot crowd out the others.
const maxPageRunes = 6000

const summaryPrompt = `You are answering a question using freshly fetched web pages.
Use only the page contents below. Cite nothing that is not in them.
If the pages do not contain the answer, say so plainly.

%s
Question: %s
Answer:`

// SummaryIndex answers a query from a set of fetched pages. It is transient:
// build one, answer once, discard it. Nothing is persisted.
type SummaryIndex struct {
	gen   rag.Generator
	pages []Page
}

// NewSummaryIndex builds a transient index over the given pages.
func NewSummaryIndex(gen rag.Generator, pages []Page) (*SummaryIndex, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("at least one page is required")
	}
	return &SummaryIndex{gen: gen, pages: pages}, nil
}

// Answer synthesizes an answer to the query from the indexed pages.
func (s *SummaryIndex) Answer(ctx context.Context, query string) (string, error) {
	var sb strings.Builder
	for i, page := range s.pages {
		fmt.Fprintf(&sb, "--- Page %d: %s (%s) ---\n", i+1, page.Title, page.URL)
		sb.WriteString(truncateRunes(page.Text, maxPageRunes))
		sb.WriteString("\n\n")
	}

	answer, err := s.gen.Generate(ctx, fmt.Sprintf(summaryPrompt, sb.String(), query))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
