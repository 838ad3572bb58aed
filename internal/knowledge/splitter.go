package knowledge

import (
	"fmt"
	"strings"
	"unicode"
)

// Splitter cuts document text into overlapping chunks of bounded rune length.
// It prefers to break at sentence boundaries, then at whitespace, and only
// cuts mid-word when a chunk contains neither.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter with the given chunk size and overlap, both
// measured in runes. Overlap must be smaller than size so every step makes
// forward progress.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split returns the chunks of text in order. Whitespace-only input yields nil.
func (s *Splitter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.size
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}

		end = s.breakpoint(runes, start, end)
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - s.overlap
		if next <= start {
			// Overlap swallowed the whole step; force progress.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// breakpoint finds the best cut position in (start, limit]. Sentence endings
// win over whitespace; both are only considered in the second half of the
// window to avoid degenerate tiny chunks.
func (s *Splitter) breakpoint(runes []rune, start, limit int) int {
	minCut := start + s.size/2

	for i := limit - 1; i > minCut; i-- {
		if isSentenceEnd(runes[i]) {
			return i + 1
		}
	}
	for i := limit - 1; i > minCut; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return limit
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
