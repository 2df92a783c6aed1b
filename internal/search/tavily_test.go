package search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/ratelimit"
	"github.com/pydevup/research-email-multi-agent-system/internal/search"
)

func newLimiter() *ratelimit.Limiter {
	return ratelimit.NewLimiter(map[string]ratelimit.Rule{
		search.ServiceName: {MaxRequests: 100, Window: time.Minute},
	})
}

func TestSearchPlaceholderKeyReturnsMock(t *testing.T) {
	for _, key := range []string{"", "your_tavily_api_key_here", "test_key"} {
		c := search.NewClient(key, newLimiter(), zap.NewNop())

		resp, err := c.Search(context.Background(), "quantum computing", 10)
		require.NoError(t, err)

		assert.Equal(t, search.SourceMock, resp.Source)
		require.Len(t, resp.Results, 4)
		assert.Equal(t, "AI Summary", resp.Results[3].Title)
		assert.Equal(t, 0.95, resp.Results[3].Score)

		// First three scores are monotonically non-increasing.
		for i := 1; i < 3; i++ {
			assert.LessOrEqual(t, resp.Results[i].Score, resp.Results[i-1].Score)
		}
	}
}

func TestSearchEmptyQueryFails(t *testing.T) {
	c := search.NewClient("real-key", newLimiter(), zap.NewNop())

	_, err := c.Search(context.Background(), "", 10)
	require.ErrorIs(t, err, search.ErrEmptyQuery)

	// Sanitization can empty a non-empty query.
	_, err = c.Search(context.Background(), `<>"'\`, 10)
	require.ErrorIs(t, err, search.ErrEmptyQuery)
}

func TestSearchSuccessMapsResults(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "First", "url": "https://a.example", "content": "aaa"},
				{"title": "Second", "url": "https://b.example", "content": "bbb"},
			},
			"answer": "short answer",
		})
	}))
	defer srv.Close()

	c := search.NewClient("real-key", newLimiter(), zap.NewNop(), search.WithBaseURL(srv.URL))

	resp, err := c.Search(context.Background(), "golang", 50)
	require.NoError(t, err)

	assert.Equal(t, search.SourceLive, resp.Source)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "First", resp.Results[0].Title)
	assert.InDelta(t, 1.0, resp.Results[0].Score, 1e-9)
	assert.InDelta(t, 0.95, resp.Results[1].Score, 1e-9)
	assert.Equal(t, "AI Summary", resp.Results[2].Title)
	assert.Equal(t, "short answer", resp.Results[2].Content)

	// max_results was clamped to 20 before hitting the wire.
	assert.EqualValues(t, 20, gotReq["max_results"])
	assert.Equal(t, "basic", gotReq["search_depth"])
}

func TestSearchHTTPErrorsFallBackToMock(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		c := search.NewClient("real-key", newLimiter(), zap.NewNop(), search.WithBaseURL(srv.URL))

		resp, err := c.Search(context.Background(), "resilience", 5)
		require.NoError(t, err, "status %d must not surface", status)
		assert.Equal(t, search.SourceMock, resp.Source)
		require.NotEmpty(t, resp.Results)
		assert.Equal(t, "AI Summary", resp.Results[len(resp.Results)-1].Title)

		srv.Close()
	}
}

func TestSearchNetworkFailureFallsBackToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := search.NewClient("real-key", newLimiter(), zap.NewNop(), search.WithBaseURL(srv.URL))

	resp, err := c.Search(context.Background(), "offline", 5)
	require.NoError(t, err)
	assert.Equal(t, search.SourceMock, resp.Source)
}

func TestSearchRateLimitedFallsBackToMock(t *testing.T) {
	limiter := ratelimit.NewLimiter(map[string]ratelimit.Rule{
		search.ServiceName: {MaxRequests: 0, Window: time.Minute},
	})

	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
	}))
	defer srv.Close()

	c := search.NewClient("real-key", limiter, zap.NewNop(), search.WithBaseURL(srv.URL))

	resp, err := c.Search(context.Background(), "quota", 5)
	require.NoError(t, err)
	assert.Equal(t, search.SourceMock, resp.Source)
	assert.False(t, hit, "rate-limited call must not reach the network")
}
