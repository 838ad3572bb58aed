package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// ErrFetch indicates a page could not be retrieved or yielded no readable text.
var ErrFetch = errors.New("page fetch failed")

// Page is the readable extraction of one fetched web page.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher downloads a page and extracts its readable text.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (Page, error)
}

// ReadabilityFetcher implements Fetcher using readability extraction, which
// strips navigation, ads and boilerplate down to the article body.
type ReadabilityFetcher struct {
	client *http.Client
}

// NewReadabilityFetcher creates a fetcher with the given timeout per page.
func NewReadabilityFetcher(timeout time.Duration) *ReadabilityFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ReadabilityFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads pageURL and returns its readable text.
func (f *ReadabilityFetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Page{}, fmt.Errorf("%w: invalid url %q", ErrFetch, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("%w: %s returned status %d", ErrFetch, pageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return Page{}, fmt.Errorf("%w: %s is not HTML (%s)", ErrFetch, pageURL, ct)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return Page{}, fmt.Errorf("%w: extracting %s: %v", ErrFetch, pageURL, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return Page{}, fmt.Errorf("%w: %s has no readable text", ErrFetch, pageURL)
	}

	return Page{URL: pageURL, Title: article.Title, Text: text}, nil
}
