package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultsPage(links ...string) string {
	page := "<html><body>"
	for i, link := range links {
		page += fmt.Sprintf(`<div class="result"><a class="result__a" href="%s">Result %d</a></div>`, link, i)
	}
	return page + "</body></html>"
}

func TestSearch_UnwrapsRedirectLinks(t *testing.T) {
	target := "https://example.com/article"
	redirect := "//duckduckgo.com/l/?uddg=" + url.QueryEscape(target)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsPage(redirect, "https://direct.example.org/page"))
	}))
	defer srv.Close()

	d := NewDuckDuckGo(WithEndpoint(srv.URL))
	urls, err := d.Search(context.Background(), "sage", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{target, "https://direct.example.org/page"}, urls)
}

func TestSearch_CapsAtMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsPage(
			"https://a.example.com/",
			"https://b.example.com/",
			"https://c.example.com/",
		))
	}))
	defer srv.Close()

	d := NewDuckDuckGo(WithEndpoint(srv.URL))
	urls, err := d.Search(context.Background(), "sage", 2)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestSearch_SendsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, resultsPage())
	}))
	defer srv.Close()

	d := NewDuckDuckGo(WithEndpoint(srv.URL))
	_, err := d.Search(context.Background(), "what is a capybara?", 3)
	require.NoError(t, err)
	assert.Equal(t, "what is a capybara?", gotQuery)
}

func TestSearch_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	d := NewDuckDuckGo(WithEndpoint(srv.URL))
	_, err := d.Search(context.Background(), "sage", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearch)
}

func TestSearch_InvalidMaxResults(t *testing.T) {
	d := NewDuckDuckGo()
	_, err := d.Search(context.Background(), "sage", 0)
	assert.ErrorIs(t, err, ErrSearch)
}

func TestResolveResultURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "redirect with uddg",
			href: "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fdoc",
			want: "https://example.com/doc",
		},
		{
			name: "direct https link",
			href: "https://example.com/doc",
			want: "https://example.com/doc",
		},
		{
			name: "redirect without target",
			href: "//duckduckgo.com/l/?other=1",
			want: "",
		},
		{
			name: "javascript link dropped",
			href: "javascript:void(0)",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveResultURL(tt.href))
		})
	}
}
