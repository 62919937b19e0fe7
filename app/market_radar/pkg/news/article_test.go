package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	headlines []Headline
	err       error
}

func (s staticProvider) Headlines(context.Context, *Query) ([]Headline, error) {
	return append([]Headline(nil), s.headlines...), s.err
}

func TestWithArticleText_Nil(t *testing.T) {
	assert.Nil(t, WithArticleText(nil, time.Second))
}

func TestWithArticleText_FillsMissingSnippets(t *testing.T) {
	var fetched []string
	p := WithArticleText(staticProvider{headlines: []Headline{
		{Title: "has snippet", URL: "https://a", Snippet: "kept"},
		{Title: "needs body", URL: "https://b"},
		{Title: "no url"},
		{Title: "broken", URL: "https://c"},
	}}, time.Second).(*articleProvider)
	p.fetch = func(url string, _ time.Duration) (readability.Article, error) {
		fetched = append(fetched, url)
		if url == "https://c" {
			return readability.Article{}, errors.New("timeout")
		}
		return readability.Article{TextContent: "  Body\n\ntext  here "}, nil
	}

	got, err := p.Headlines(context.Background(), &Query{Subject: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b", "https://c"}, fetched)
	assert.Equal(t, "kept", got[0].Snippet)
	assert.Equal(t, "Body text here", got[1].Snippet)
	assert.Empty(t, got[2].Snippet)
	assert.Empty(t, got[3].Snippet)
}

func TestWithArticleText_PropagatesProviderError(t *testing.T) {
	p := WithArticleText(staticProvider{err: errors.New("down")}, time.Second)
	_, err := p.Headlines(context.Background(), &Query{})
	assert.EqualError(t, err, "down")
}

func TestWithArticleText_Readability(t *testing.T) {
	paragraph := strings.Repeat("Apple reported record services revenue as iPhone demand held up in key markets. ", 12)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Apple earnings</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Apple earnings</h1><p>` + paragraph + `</p><p>` + paragraph + `</p></article>
</body></html>`))
	}))
	defer srv.Close()

	p := WithArticleText(staticProvider{headlines: []Headline{{Title: "Apple earnings", URL: srv.URL}}}, 5*time.Second)
	got, err := p.Headlines(context.Background(), &Query{Subject: "AAPL"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Snippet, "Apple reported record services revenue")
	assert.LessOrEqual(t, len([]rune(got[0].Snippet)), MaxSnippetRunes+1)
}
