// Package search wraps the Tavily search API. Transient failures never reach
// the caller: auth errors, rate limits and network problems all degrade to
// deterministic mock results so the research pipeline always has something to
// work with. The Source field on every response tells live and mock data
// apart.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/config"
	"github.com/pydevup/research-email-multi-agent-system/internal/ratelimit"
	"github.com/pydevup/research-email-multi-agent-system/internal/sanitize"
)

const (
	defaultBaseURL = "https://api.tavily.com"

	// ServiceName is the rate-limiter bucket shared by all search calls.
	ServiceName = "search"

	queryMaxLength    = 500
	defaultMaxResults = 10
	maxMaxResults     = 20
)

// ErrEmptyQuery indicates the query was empty after sanitization.
var ErrEmptyQuery = errors.New("query cannot be empty after sanitization")

// Source marks where a response came from.
type Source string

const (
	SourceLive Source = "live"
	SourceMock Source = "mock"
)

// Result is a single search hit. Score is a position-derived relevance value
// in [0,1]; the synthesized "AI Summary" entry always scores 0.95.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response carries the ordered results for one query plus their provenance.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Source  Source   `json:"source"`
}

// Client calls the Tavily search API under rate limiting.
type Client struct {
	apiKey        string
	depth         string
	includeAnswer bool
	baseURL       string
	httpClient    *http.Client
	limiter       *ratelimit.Limiter
	log           *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Tests point it at a local server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDepth sets Tavily's search depth ("basic" or "advanced").
func WithDepth(depth string) Option {
	return func(c *Client) { c.depth = depth }
}

// WithoutAnswer disables the synthesized "AI Summary" entry.
func WithoutAnswer() Option {
	return func(c *Client) { c.includeAnswer = false }
}

// NewClient constructs a search client. The limiter is shared with whoever
// else calls the same external service.
func NewClient(apiKey string, limiter *ratelimit.Limiter, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		depth:         "basic",
		includeAnswer: true,
		baseURL:       defaultBaseURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		limiter:       limiter,
		log:           log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
	Answer string `json:"answer"`
}

// Search runs a query. It fails only when the query is empty after
// sanitization; every transient failure is downgraded to mock results with a
// logged warning.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*Response, error) {
	if config.IsPlaceholderKey(c.apiKey) {
		c.log.Warn("search API key not configured, using mock data")
		return MockResponse(query), nil
	}

	query = sanitize.Sanitize(query, queryMaxLength)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxMaxResults {
		maxResults = maxMaxResults
	}

	if err := c.limiter.Allow(ServiceName); err != nil {
		c.log.Warn("search rate limit hit, using mock data", zap.Error(err))
		return MockResponse(query), nil
	}

	// Query text stays out of the logs.
	c.log.Info("searching", zap.Int("query_length", len(query)), zap.Int("max_results", maxResults))

	payload, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		MaxResults:    maxResults,
		SearchDepth:   c.depth,
		IncludeAnswer: c.includeAnswer,
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("search request failed, using mock data", zap.Error(err))
		return MockResponse(query), nil
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.log.Warn("search API rate limit exceeded, using mock data")
		return MockResponse(query), nil
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Warn("invalid search API key, using mock data")
		return MockResponse(query), nil
	case resp.StatusCode != http.StatusOK:
		c.log.Warn("search API error, using mock data", zap.Int("status", resp.StatusCode))
		return MockResponse(query), nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("search response decode failed, using mock data", zap.Error(err))
		return MockResponse(query), nil
	}

	results := make([]Result, 0, len(body.Results)+1)
	for idx, r := range body.Results {
		score := 1.0 - float64(idx)*0.05
		if score < 0.1 {
			score = 0.1
		}
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   score,
		})
	}

	if c.includeAnswer && body.Answer != "" {
		results = append(results, Result{
			Title:   "AI Summary",
			Content: body.Answer,
			Score:   0.95,
		})
	}

	c.log.Info("search completed", zap.Int("result_count", len(results)))

	return &Response{Query: query, Results: results, Source: SourceLive}, nil
}
