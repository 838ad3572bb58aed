// Package tools defines the tool abstraction the agent reasons over and the
// concrete tools it can call: document retrieval, web search and email
// dispatch. Tools are stored type-erased in a registry so the agent loop can
// dispatch any of them uniformly, while NewTool keeps each tool's input and
// output types checked at compile time.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is the agent-facing surface of a tool.
type Tool interface {
	// Name returns the unique identifier of the tool.
	Name() string

	// Description tells the model what the tool does and when to call it.
	Description() string

	// SideEffecting reports whether calling the tool changes the outside
	// world. The agent budgets side-effecting calls per user turn.
	SideEffecting() bool

	// Execute runs the tool. Input is either the typed input value or a
	// map[string]any decoded from the model's tool request.
	Execute(ctx context.Context, input any) (any, error)
}

// ExecutableTool is the standard Tool implementation produced by NewTool.
type ExecutableTool struct {
	name          string
	description   string
	sideEffecting bool

	handler func(context.Context, any) (any, error)
}

func (t *ExecutableTool) Name() string        { return t.name }
func (t *ExecutableTool) Description() string { return t.description }
func (t *ExecutableTool) SideEffecting() bool { return t.sideEffecting }

// Execute runs the tool with the given input.
func (t *ExecutableTool) Execute(ctx context.Context, input any) (any, error) {
	return t.handler(ctx, input)
}

// NewTool creates a tool with type-safe input and output handling. Type
// erasure happens internally so tools with different signatures can share a
// registry. The model hands inputs over as map[string]any; those are decoded
// into In via JSON.
func NewTool[In, Out any](
	name string,
	description string,
	sideEffecting bool,
	handler func(context.Context, In) (Out, error),
) *ExecutableTool {
	var zeroIn In

	erased := func(ctx context.Context, input any) (any, error) {
		if typed, ok := input.(In); ok {
			return handler(ctx, typed)
		}

		raw, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("marshaling tool input: %w", err)
		}
		var typed In
		if err := json.Unmarshal(raw, &typed); err != nil {
			return nil, fmt.Errorf("invalid input for %s: expected %T, got %T: %w", name, zeroIn, input, err)
		}
		return handler(ctx, typed)
	}

	return &ExecutableTool{
		name:          name,
		description:   description,
		sideEffecting: sideEffecting,
		handler:       erased,
	}
}
