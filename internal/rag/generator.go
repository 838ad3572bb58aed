package rag

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Generator is the narrow language-model surface the synthesis stages consume:
// one prompt in, raw text out. Tests substitute a canned implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenkitGenerator implements Generator on top of a Genkit instance.
type GenkitGenerator struct {
	g     *genkit.Genkit
	model string
}

// NewGenkitGenerator creates a Generator using the named model.
func NewGenkitGenerator(g *genkit.Genkit, model string) (*GenkitGenerator, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &GenkitGenerator{g: g, model: model}, nil
}

// Generate performs a single model call and returns the raw response text.
func (gg *GenkitGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return resp.Text(), nil
}
