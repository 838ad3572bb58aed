package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrSearch indicates the web search provider failed.
var ErrSearch = errors.New("web search failed")

// Searcher issues a web search and returns result URLs, best first.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// defaultSearchEndpoint is DuckDuckGo's HTML (non-JS) results page. There is
// no official API, so results are parsed out of the HTML like the lite
// clients do.
const defaultSearchEndpoint = "https://html.duckduckgo.com/html/"

// searchUserAgent identifies us as a regular browser; the HTML endpoint
// rejects obvious bots.
const searchUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0 Safari/537.36"

// DuckDuckGo implements Searcher against the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
}

// DuckDuckGoOption configures a DuckDuckGo searcher.
type DuckDuckGoOption func(*DuckDuckGo)

// WithEndpoint overrides the search endpoint. Used by tests.
func WithEndpoint(endpoint string) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.client = client }
}

// NewDuckDuckGo creates a DuckDuckGo searcher.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		endpoint: defaultSearchEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search returns up to maxResults result URLs for the query.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: maxResults must be positive", ErrSearch)
	}

	reqURL := d.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrSearch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing results: %v", ErrSearch, err)
	}

	var urls []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		if resolved := resolveResultURL(href); resolved != "" {
			urls = append(urls, resolved)
		}
		return len(urls) < maxResults
	})

	return urls, nil
}

// resolveResultURL unwraps DuckDuckGo's redirect links. Result anchors point
// at //duckduckgo.com/l/?uddg=<escaped target>; direct links pass through.
func resolveResultURL(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(parsed.Hostname(), "duckduckgo.com") {
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
		return ""
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
