package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"
)

// ErrEmbedding indicates the external embedding model call failed.
var ErrEmbedding = errors.New("embedding failed")

// NewEmbeddingFunc creates a chromem-go EmbeddingFunc from a Genkit ai.Embedder.
// The returned function bridges Genkit's embedding API with chromem-go's
// requirements.
//
// Note: chromem-go normalizes vectors itself, so no manual normalization is
// needed here.
func NewEmbeddingFunc(embedder ai.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		req := &ai.EmbedRequest{
			Input: []*ai.Document{
				ai.DocumentFromText(text, nil),
			},
		}

		resp, err := embedder.Embed(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
		}

		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbedding)
		}

		return resp.Embeddings[0].Embedding, nil
	}
}
