package knowledge

// Document represents one source document before chunking: immutable text plus
// optional metadata (source URL, file name). Documents are owned by the
// indexer until they are split into chunks.
type Document struct {
	ID       string            // Unique identifier
	Content  string            // Document text content
	Metadata map[string]string // Optional metadata (source, file name, etc.)
}

// Chunk is a bounded-length slice of a document's text, the unit of retrieval.
// Each chunk belongs to exactly one document and receives exactly one
// embedding vector when stored.
type Chunk struct {
	ID         string            // Unique identifier (derived from document ID + sequence)
	DocumentID string            // Back-reference to the source document
	Seq        int               // Position within the source document
	Content    string            // Chunk text
	Metadata   map[string]string // Copied from the document, plus chunk position
}

// Result is a single search hit: a chunk with its similarity score.
type Result struct {
	Chunk      Chunk
	Similarity float32 // Cosine similarity score (0-1)
}
