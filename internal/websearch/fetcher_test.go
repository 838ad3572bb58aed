package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html><head><title>Sage Basics</title></head><body>
<nav>Home | About | Contact</nav>
<article>
<h1>Sage Basics</h1>
<p>Sage is a culinary herb used across Mediterranean cooking. It pairs well
with butter and is traditionally added to stuffing. The leaves are grey-green
and slightly fuzzy to the touch, and the flavor is earthy with pine notes.</p>
<p>Dried sage keeps for about six months in an airtight jar. Fresh sage should
be wrapped in a damp towel and used within a week of picking for best flavor.</p>
</article>
</body></html>`

func TestFetch_ExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	f := NewReadabilityFetcher(5 * time.Second)
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, page.URL)
	assert.Contains(t, page.Text, "culinary herb")
	assert.NotContains(t, page.Text, "<p>")
}

func TestFetch_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	f := NewReadabilityFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetch_RejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewReadabilityFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetch_RejectsInvalidURL(t *testing.T) {
	f := NewReadabilityFetcher(5 * time.Second)

	_, err := f.Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, ErrFetch)

	_, err = f.Fetch(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrFetch)
}
