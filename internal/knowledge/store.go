package knowledge

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sagekit/sage/internal/log"

	chromem "github.com/philippgille/chromem-go"
)

// Store manages chunks with vector search in an embedded chromem-go database.
// The persistent variant is keyed by a storage path and a collection name; the
// in-memory variant backs tests and throwaway indexes.
//
// Store is read-mostly: writes happen only during corpus (re)indexing, which
// is assumed not to run concurrently with query serving.
type Store struct {
	db     *chromem.DB
	col    *chromem.Collection
	logger log.Logger
}

// Open opens (or creates) a persistent store at path using the given
// collection namespace. The embedding function is invoked for every added
// chunk and for every query.
func Open(path, collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %q: %w", path, err)
	}
	return newStore(db, collection, embed, logger)
}

// NewMemory creates a transient in-memory store. Used by tests and by the
// ephemeral web-fallback index; contents are discarded with the value.
func NewMemory(collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	return newStore(chromem.NewDB(), collection, embed, logger)
}

func newStore(db *chromem.DB, collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	col, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collection, err)
	}
	return &Store{db: db, col: col, logger: logger}, nil
}

// Add embeds and stores a single chunk. Chunks are immutable once stored;
// re-adding the same ID overwrites the previous record.
func (s *Store) Add(ctx context.Context, chunk Chunk) error {
	meta := make(map[string]string, len(chunk.Metadata)+2)
	for k, v := range chunk.Metadata {
		meta[k] = v
	}
	meta["document_id"] = chunk.DocumentID
	meta["seq"] = strconv.Itoa(chunk.Seq)

	err := s.col.AddDocument(ctx, chromem.Document{
		ID:       chunk.ID,
		Content:  chunk.Content,
		Metadata: meta,
	})
	if err != nil {
		return fmt.Errorf("adding chunk %q: %w", chunk.ID, err)
	}

	s.logger.Debug("added chunk", "id", chunk.ID, "document_id", chunk.DocumentID, "content_length", len(chunk.Content))
	return nil
}

// Search returns up to topK chunks most similar to the query, ordered by
// descending similarity. Results are unique by chunk: chromem keys records by
// ID, so no deduplication pass is needed here.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	// chromem rejects queries asking for more results than stored records.
	count := s.col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	hits, err := s.col.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		seq, _ := strconv.Atoi(hit.Metadata["seq"])
		results = append(results, Result{
			Chunk: Chunk{
				ID:         hit.ID,
				DocumentID: hit.Metadata["document_id"],
				Seq:        seq,
				Content:    hit.Content,
				Metadata:   hit.Metadata,
			},
			Similarity: hit.Similarity,
		})
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	return s.col.Count()
}

// Delete removes a chunk by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("deleting chunk %q: %w", id, err)
	}
	return nil
}
