// Package scrape builds the local document corpus by downloading pages and
// saving the content fragment of each one under a data directory. The saved
// files are what the indexer later chunks and embeds.
package scrape

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sagekit/sage/internal/config"
	"github.com/sagekit/sage/internal/log"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// ErrNoURLs indicates the scraper was invoked with nothing to fetch.
var ErrNoURLs = errors.New("no urls to scrape")

// pagePrefix and pageExt name saved corpus files: page_1.html, page_2.html, ...
const (
	pagePrefix = "page_"
	pageExt    = ".html"
)

// Result summarizes one scraper run.
type Result struct {
	PagesSaved  int
	PagesFailed int
	Duration    time.Duration
}

// Scraper downloads pages and saves their content fragments to disk.
type Scraper struct {
	cfg    config.ScraperConfig
	logger log.Logger
}

// NewScraper creates a scraper from configuration.
func NewScraper(cfg config.ScraperConfig, logger log.Logger) (*Scraper, error) {
	if cfg.Selector == "" {
		return nil, fmt.Errorf("content selector is required")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Scraper{cfg: cfg, logger: logger}, nil
}

// Run fetches every URL and saves the matched content fragment of each page
// as page_N.html under outDir. Numbering continues after any pages already
// present, so repeated runs extend the corpus instead of overwriting it.
// Pages that fail to download or do not match the selector are counted and
// skipped.
func (s *Scraper) Run(urls []string, outDir string) (Result, error) {
	if len(urls) == 0 {
		return Result{}, ErrNoURLs
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}

	next, err := nextPageNumber(outDir)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()

	var (
		mu     sync.Mutex
		result Result
	)

	c := colly.NewCollector(colly.Async(true))
	c.SetRequestTimeout(time.Duration(s.cfg.TimeoutMs) * time.Millisecond)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: s.cfg.Parallelism,
		Delay:       time.Duration(s.cfg.DelayMs) * time.Millisecond,
	}); err != nil {
		return Result{}, fmt.Errorf("configuring rate limit: %w", err)
	}

	c.OnHTML(s.cfg.Selector, func(e *colly.HTMLElement) {
		fragment, err := goquery.OuterHtml(e.DOM)
		if err != nil {
			s.logger.Warn("serializing fragment failed", "url", e.Request.URL, "error", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		name := fmt.Sprintf("%s%d%s", pagePrefix, next, pageExt)
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(fragment), 0o600); err != nil {
			s.logger.Warn("saving page failed", "url", e.Request.URL, "error", err)
			result.PagesFailed++
			return
		}
		next++
		result.PagesSaved++
		s.logger.Info("page saved", "url", e.Request.URL.String(), "file", name)
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		result.PagesFailed++
		mu.Unlock()
		s.logger.Warn("page download failed", "url", r.Request.URL, "error", err)
	})

	for _, pageURL := range urls {
		if err := c.Visit(pageURL); err != nil {
			mu.Lock()
			result.PagesFailed++
			mu.Unlock()
			s.logger.Warn("visit rejected", "url", pageURL, "error", err)
		}
	}
	c.Wait()

	// Downloads that matched nothing produce neither a save nor an error
	// callback. Attribute the remainder to them.
	mu.Lock()
	if missed := len(urls) - result.PagesSaved - result.PagesFailed; missed > 0 {
		result.PagesFailed += missed
	}
	result.Duration = time.Since(start)
	final := result
	mu.Unlock()

	return final, nil
}

// nextPageNumber returns one past the highest page_N.html already in dir.
func nextPageNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading output directory: %w", err)
	}

	var numbers []int
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, pagePrefix) || !strings.HasSuffix(name, pageExt) {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(name, pagePrefix+"%d"+pageExt, &n); err == nil {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return 1, nil
	}
	sort.Ints(numbers)
	return numbers[len(numbers)-1] + 1, nil
}
