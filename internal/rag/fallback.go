package rag

import (
	"fmt"
	"strings"
)

// Trigger decides whether a synthesized answer is grounded well enough or the
// query should escalate to live web search.
//
// The decision is a case-insensitive substring test against a fixed set of
// low-confidence marker phrases. It is a heuristic, not a semantic classifier:
// an answer that merely mentions a marker phrase triggers fallback even when
// substantively correct, and a poorly grounded answer that avoids the markers
// does not. Both false positives and false negatives are accepted in exchange
// for not spending a second model call on confidence scoring.
type Trigger struct {
	markers []string // lowercased at construction
}

// NewTrigger creates a Trigger from the given marker phrases.
func NewTrigger(markers []string) (*Trigger, error) {
	if len(markers) == 0 {
		return nil, fmt.Errorf("at least one marker phrase is required")
	}
	lowered := make([]string, len(markers))
	for i, m := range markers {
		lowered[i] = strings.ToLower(m)
	}
	return &Trigger{markers: lowered}, nil
}

// NeedsFallback reports whether the answer's lowercased text contains at
// least one marker phrase. Pure function; deterministic for any input.
func (t *Trigger) NeedsFallback(answer string) bool {
	lowered := strings.ToLower(answer)
	for _, marker := range t.markers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
