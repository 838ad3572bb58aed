package websearch

import (
	"context"
	"fmt"
	"sync"

	"github.com/sagekit/sage/internal/log"
	"github.com/sagekit/sage/internal/rag"

	"golang.org/x/sync/errgroup"
)

// Path is the full web-retrieval pipeline: search for candidate URLs, fetch
// them concurrently, then answer from a transient summary index over whatever
// came back. It implements rag.WebFallback.
type Path struct {
	searcher   Searcher
	fetcher    Fetcher
	gen        rag.Generator
	maxResults int
	logger     log.Logger
}

// PathConfig holds the dependencies and tuning for a Path.
type PathConfig struct {
	Searcher   Searcher
	Fetcher    Fetcher
	Generator  rag.Generator
	MaxResults int
	Logger     log.Logger
}

// NewPath creates a web-retrieval path.
func NewPath(cfg PathConfig) (*Path, error) {
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("max results must be positive, got %d", cfg.MaxResults)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Path{
		searcher:   cfg.Searcher,
		fetcher:    cfg.Fetcher,
		gen:        cfg.Generator,
		maxResults: cfg.MaxResults,
		logger:     cfg.Logger,
	}, nil
}

// Answer runs the pipeline for one query. A failed search, zero result URLs,
// or zero successfully fetched pages exhausts the path; individual fetch
// failures are tolerated as long as at least one page comes back.
func (p *Path) Answer(ctx context.Context, query string) (string, error) {
	urls, err := p.searcher.Search(ctx, query, p.maxResults)
	if err != nil {
		return "", fmt.Errorf("%w: %v", rag.ErrFallbackExhausted, err)
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: search returned no results", rag.ErrFallbackExhausted)
	}
	p.logger.Debug("web search complete", "query", query, "urls", len(urls))

	pages := p.fetchAll(ctx, urls)
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: none of %d pages could be fetched", rag.ErrFallbackExhausted, len(urls))
	}

	index, err := NewSummaryIndex(p.gen, pages)
	if err != nil {
		return "", err
	}

	answer, err := index.Answer(ctx, query)
	if err != nil {
		return "", err
	}
	p.logger.Info("web fallback answered", "query", query, "pages", len(pages))
	return answer, nil
}

// fetchAll fetches the URLs concurrently. Failures are logged and dropped;
// page order follows the search ranking, not fetch completion.
func (p *Path) fetchAll(ctx context.Context, urls []string) []Page {
	var (
		mu      sync.Mutex
		fetched = make(map[int]Page, len(urls))
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, pageURL := range urls {
		g.Go(func() error {
			page, err := p.fetcher.Fetch(gctx, pageURL)
			if err != nil {
				p.logger.Warn("page fetch skipped", "url", pageURL, "error", err)
				return nil
			}
			mu.Lock()
			fetched[i] = page
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]Page, 0, len(fetched))
	for i := range urls {
		if page, ok := fetched[i]; ok {
			pages = append(pages, page)
		}
	}
	return pages
}
