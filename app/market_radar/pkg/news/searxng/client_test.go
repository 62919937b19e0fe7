package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/news"
)

func TestClient_Headlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "TSLA stock news", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "news", r.URL.Query().Get("categories"))
		assert.Equal(t, "week", r.URL.Query().Get("time_range"))

		_, _ = w.Write([]byte(`{"results":[
			{"title":"Tesla recalls","url":"https://a","content":"Software fix","publishedDate":"2026-03-01T10:00:00"},
			{"title":"Deliveries dip","url":"https://b"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5)
	got, err := c.Headlines(context.Background(), &news.Query{
		Subject: "TSLA",
		Limit:   1,
		Since:   time.Now().Add(-3 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, []news.Headline{
		{Title: "Tesla recalls", URL: "https://a", Snippet: "Software fix", PublishedAt: "2026-03-01T10:00:00"},
	}, got)
}

func TestClient_HeadlinesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Headlines(context.Background(), &news.Query{Subject: "TSLA"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestTimeRange(t *testing.T) {
	assert.Equal(t, "day", timeRange(time.Hour))
	assert.Equal(t, "week", timeRange(3*24*time.Hour))
	assert.Equal(t, "month", timeRange(20*24*time.Hour))
	assert.Equal(t, "year", timeRange(90*24*time.Hour))
}
