package agent

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

const systemPrompt = `You are Sage, a research assistant with access to tools.
Think step by step. When a tool can help, request it; otherwise answer directly.
Prefer query_documents for anything the saved documentation might cover.
Use web_search for current events or topics outside the documents.
Only use send_email when the user explicitly asked for an email, at most once.
When you have enough information, reply with the final answer as plain text.`

// GenkitReasoner asks the model for the next step. Tool requests are returned
// to the caller instead of being executed by the framework, so the loop in
// this package stays in control of dispatch and budgets.
type GenkitReasoner struct {
	g         *genkit.Genkit
	modelName string
	toolRefs  []ai.ToolRef
}

// NewGenkitReasoner creates a reasoner over registered Genkit tools.
func NewGenkitReasoner(g *genkit.Genkit, modelName string, toolHandles []ai.Tool) (*GenkitReasoner, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: genkit instance is required", ErrInvalidConfig)
	}
	if modelName == "" {
		return nil, fmt.Errorf("%w: model name is required", ErrInvalidConfig)
	}

	refs := make([]ai.ToolRef, 0, len(toolHandles))
	for _, handle := range toolHandles {
		refs = append(refs, handle)
	}

	return &GenkitReasoner{g: g, modelName: modelName, toolRefs: refs}, nil
}

// Reason runs one model call over the conversation so far.
func (r *GenkitReasoner) Reason(ctx context.Context, messages []*ai.Message) (*ai.ModelResponse, error) {
	return genkit.Generate(ctx, r.g,
		ai.WithModelName(r.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithMessages(messages...),
		ai.WithTools(r.toolRefs...),
		ai.WithReturnToolRequests(true),
	)
}
