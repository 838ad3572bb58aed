package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// DefineAll registers every tool in the registry with Genkit and returns the
// resulting tool handles for use with ai.WithTools. Each tool is defined with
// its typed input struct so the model sees a real parameter schema, not a
// free-form object.
func DefineAll(g *genkit.Genkit, reg *Registry) ([]ai.Tool, error) {
	var defined []ai.Tool
	for _, tool := range reg.All() {
		var handle ai.Tool
		switch tool.Name() {
		case QueryDocumentsName:
			handle = define[QueryDocumentsInput](g, tool)
		case WebSearchName:
			handle = define[WebSearchInput](g, tool)
		case SendEmailName:
			handle = define[SendEmailInput](g, tool)
		default:
			return nil, fmt.Errorf("no input schema registered for tool %s", tool.Name())
		}
		defined = append(defined, handle)
	}
	return defined, nil
}

func define[In any](g *genkit.Genkit, tool Tool) ai.Tool {
	return genkit.DefineTool(g, tool.Name(), tool.Description(),
		func(tctx *ai.ToolContext, input In) (any, error) {
			return tool.Execute(tctx.Context, input)
		})
}
