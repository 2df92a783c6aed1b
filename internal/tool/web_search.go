package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pydevup/research-email-multi-agent-system/internal/search"
)

type WebSearchRequest struct {
	Query      string `json:"query" jsonschema:"the search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"max results to return (1-20)"`
}

type SearchHit struct {
	Title   string  `json:"title" jsonschema:"result title"`
	URL     string  `json:"url" jsonschema:"result URL"`
	Content string  `json:"content" jsonschema:"result snippet"`
	Score   float64 `json:"score" jsonschema:"relevance score in [0,1]"`
}

type WebSearchResponse struct {
	Query   string      `json:"query" jsonschema:"the executed query"`
	Results []SearchHit `json:"results" jsonschema:"ordered search results"`
	Source  string      `json:"source" jsonschema:"live or mock"`
}

type searchSvc interface {
	Search(ctx context.Context, query string, maxResults int) (*search.Response, error)
}

func NewWebSearch(svc searchSvc) *WebSearch {
	return &WebSearch{
		svc: svc,
	}
}

type WebSearch struct {
	svc searchSvc
}

func (t *WebSearch) WebSearch(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input WebSearchRequest,
) (*mcp.CallToolResult, WebSearchResponse, error) {
	result, err := t.svc.Search(ctx, input.Query, input.MaxResults)
	if err != nil {
		return nil, WebSearchResponse{}, fmt.Errorf("svc.Search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(result.Results))
	for _, r := range result.Results {
		hits = append(hits, SearchHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}

	return nil, WebSearchResponse{
		Query:   result.Query,
		Results: hits,
		Source:  string(result.Source),
	}, nil
}
