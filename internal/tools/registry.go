package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateTool indicates a tool name was registered twice.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrUnknownTool indicates a dispatch for a name that was never registered.
	ErrUnknownTool = errors.New("unknown tool")
)

// Registry holds the tools available to the agent, keyed by unique name.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Names must be non-empty and unique.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = tool
	return nil
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool, nil
}

// All returns every registered tool, sorted by name for stable iteration.
func (r *Registry) All() []Tool {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	all := make([]Tool, 0, len(names))
	for _, name := range names {
		all = append(all, r.tools[name])
	}
	return all
}

// Execute dispatches a tool call by name.
func (r *Registry) Execute(ctx context.Context, name string, input any) (any, error) {
	tool, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return tool.Execute(ctx, input)
}
