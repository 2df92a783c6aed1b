package search

import "fmt"

// MockResponse builds deterministic, query-templated substitute results for
// when the live search dependency is unavailable or unauthenticated.
func MockResponse(query string) *Response {
	results := []Result{
		{
			Title:   fmt.Sprintf("Research Article about %s", query),
			URL:     "https://example.com/research",
			Content: fmt.Sprintf("This is a mock research article about %s. The content discusses key aspects and recent developments in this field.", query),
			Score:   0.9,
		},
		{
			Title:   fmt.Sprintf("News Report on %s", query),
			URL:     "https://example.com/news",
			Content: fmt.Sprintf("Recent news coverage about %s including updates and analysis from experts in the field.", query),
			Score:   0.8,
		},
		{
			Title:   fmt.Sprintf("Technical Documentation for %s", query),
			URL:     "https://example.com/docs",
			Content: fmt.Sprintf("Technical documentation and implementation details for %s including code examples and best practices.", query),
			Score:   0.7,
		},
		{
			Title:   "AI Summary",
			Content: fmt.Sprintf("Based on research about %s, here are the key findings: This topic involves multiple aspects that are currently being studied and developed. Recent developments show promising advancements in this area.", query),
			Score:   0.95,
		},
	}

	return &Response{Query: query, Results: results, Source: SourceMock}
}
