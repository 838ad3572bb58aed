package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/sagekit/sage/internal/knowledge"
	"github.com/sagekit/sage/internal/log"
)

// qaPrompt instructs the model to answer strictly from the supplied context.
// With an empty context set the model is expected to say so rather than
// answer from prior knowledge; the fallback trigger keys off that wording.
const qaPrompt = `Context information is below.
---------------------
%s
---------------------
Given the context information and not prior knowledge, answer the query.
If the context is empty or does not contain the answer, reply exactly with "Empty Response".
Query: %s
Answer:`

// Synthesizer composes an answer to a query from retrieved chunks.
// Chunks scoring below the similarity cutoff are discarded before the prompt
// is built; if every chunk is discarded, synthesis proceeds with an empty
// context set.
type Synthesizer struct {
	gen    Generator
	cutoff float32
	logger log.Logger
}

// NewSynthesizer creates a Synthesizer with the given similarity cutoff in [0,1].
func NewSynthesizer(gen Generator, cutoff float32, logger log.Logger) (*Synthesizer, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cutoff < 0 || cutoff > 1 {
		return nil, fmt.Errorf("cutoff must be in [0,1], got %v", cutoff)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Synthesizer{gen: gen, cutoff: cutoff, logger: logger}, nil
}

// Synthesize filters results by the cutoff, builds the QA prompt, and performs
// exactly one LLM call. Model failures surface as ErrGeneration, unretried.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []knowledge.Result) (string, error) {
	kept := make([]knowledge.Result, 0, len(results))
	for _, res := range results {
		if res.Similarity >= s.cutoff {
			kept = append(kept, res)
		}
	}
	s.logger.Debug("synthesis context",
		"retrieved", len(results),
		"kept", len(kept),
		"cutoff", s.cutoff,
	)

	prompt := fmt.Sprintf(qaPrompt, contextSection(kept), query)
	answer, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// contextSection renders the kept chunks for the prompt, most similar first.
func contextSection(results []knowledge.Result) string {
	if len(results) == 0 {
		return "(no context available)"
	}
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(res.Chunk.Content)
	}
	return b.String()
}
