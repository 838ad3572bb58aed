package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sagekit/sage/internal/knowledge"
	"github.com/sagekit/sage/internal/log"
)

// ChunkSearcher is the slice of the vector store the Retriever needs.
// *knowledge.Store satisfies it.
type ChunkSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]knowledge.Result, error)
}

// Retriever returns the top-K indexed chunks nearest to a query. The embedding
// of the query and the similarity metric are delegated to the store.
type Retriever struct {
	store  ChunkSearcher
	topK   int
	logger log.Logger
}

// NewRetriever creates a Retriever searching store with the given top-K.
func NewRetriever(store ChunkSearcher, topK int, logger log.Logger) (*Retriever, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Retriever{store: store, topK: topK, logger: logger}, nil
}

// Retrieve returns up to topK results ordered by descending similarity,
// unique by chunk. Embedding failures surface as knowledge.ErrEmbedding; any
// other store failure is reported as ErrBackendUnavailable. No internal retry.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]knowledge.Result, error) {
	results, err := r.store.Search(ctx, query, r.topK)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmbedding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	// The store keeps the ordering and uniqueness invariants; enforce them
	// here anyway so every caller can rely on them regardless of backend.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	seen := make(map[string]bool, len(results))
	unique := results[:0]
	for _, res := range results {
		if seen[res.Chunk.ID] {
			continue
		}
		seen[res.Chunk.ID] = true
		unique = append(unique, res)
	}

	r.logger.Debug("retrieved chunks", "query_length", len(query), "count", len(unique))
	return unique, nil
}
