package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sagekit/sage/internal/knowledge"
	"github.com/sagekit/sage/internal/log"
)

// ChunkWriter is the storage surface the Indexer needs; *knowledge.Store
// satisfies it. Interface defined by the consumer, not the provider.
type ChunkWriter interface {
	Add(ctx context.Context, chunk knowledge.Chunk) error
}

// supportedExtensions are the corpus file types the indexer accepts.
// HTML dominates because the corpus is built by the scraper.
var supportedExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".txt":  true,
	".md":   true,
}

// IndexResult summarizes one indexing run.
type IndexResult struct {
	FilesAdded   int
	FilesSkipped int
	FilesFailed  int
	ChunksAdded  int
	Duration     time.Duration
}

// Indexer turns a directory of corpus files into chunked, embedded records in
// the vector store. Per-file failures are skipped so one bad page cannot
// abort a whole run.
type Indexer struct {
	store    ChunkWriter
	splitter *knowledge.Splitter
	logger   log.Logger
}

// NewIndexer creates an Indexer writing through store with the given splitter.
func NewIndexer(store ChunkWriter, splitter *knowledge.Splitter, logger log.Logger) (*Indexer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if splitter == nil {
		return nil, fmt.Errorf("splitter is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Indexer{store: store, splitter: splitter, logger: logger}, nil
}

// IndexDirectory indexes every supported file directly under dir.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (*IndexResult, error) {
	start := time.Now()
	result := &IndexResult{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !supportedExtensions[ext] {
			result.FilesSkipped++
			continue
		}

		path := filepath.Join(dir, entry.Name())
		added, err := idx.indexFile(ctx, path, ext)
		if err != nil {
			idx.logger.Warn("indexing file failed, skipping", "file", path, "error", err)
			result.FilesFailed++
			continue
		}
		result.FilesAdded++
		result.ChunksAdded += added
	}

	result.Duration = time.Since(start)
	idx.logger.Info("corpus indexed",
		"files_added", result.FilesAdded,
		"files_skipped", result.FilesSkipped,
		"files_failed", result.FilesFailed,
		"chunks_added", result.ChunksAdded,
		"duration", result.Duration,
	)
	return result, nil
}

// indexFile loads one file, extracts its text, splits it, and stores every
// chunk. Returns the number of chunks added.
func (idx *Indexer) indexFile(ctx context.Context, path, ext string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	text := string(raw)
	if ext == ".html" || ext == ".htm" {
		text, err = extractHTMLText(text)
		if err != nil {
			return 0, fmt.Errorf("extracting html text: %w", err)
		}
	}

	pieces := idx.splitter.Split(text)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("no indexable text")
	}

	docID := generateDocID(path)
	fileName := filepath.Base(path)
	for seq, piece := range pieces {
		chunk := knowledge.Chunk{
			ID:         fmt.Sprintf("%s-%d", docID, seq),
			DocumentID: docID,
			Seq:        seq,
			Content:    piece,
			Metadata: map[string]string{
				"file_name":  fileName,
				"indexed_at": time.Now().Format(time.RFC3339),
			},
		}
		if err := idx.store.Add(ctx, chunk); err != nil {
			return seq, fmt.Errorf("storing chunk %d: %w", seq, err)
		}
	}
	return len(pieces), nil
}

// extractHTMLText strips markup and returns the visible text of an HTML page.
func extractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(doc.Text()), nil
}

// generateDocID derives a stable document ID from the file path.
func generateDocID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	hash := sha256.Sum256([]byte(abs))
	return "doc_" + hex.EncodeToString(hash[:16])
}
