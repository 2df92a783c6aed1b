package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pydevup/research-email-multi-agent-system/internal/agent"
)

type SuggestImprovementsRequest struct {
	EmailContent  string `json:"email_content" jsonschema:"the email content to analyze"`
	RecipientType string `json:"recipient_type,omitempty" jsonschema:"professional, casual or formal"`
}

type SuggestImprovementsResponse struct {
	Suggestions      []string `json:"suggestions" jsonschema:"improvement suggestions"`
	TotalSuggestions int      `json:"total_suggestions" jsonschema:"count of suggestions"`
	RecipientType    string   `json:"recipient_type" jsonschema:"recipient type used for analysis"`
}

func NewSuggestImprovements() *SuggestImprovements {
	return &SuggestImprovements{}
}

type SuggestImprovements struct{}

func (t *SuggestImprovements) SuggestImprovements(
	_ context.Context,
	req *mcp.CallToolRequest,
	input SuggestImprovementsRequest,
) (*mcp.CallToolResult, SuggestImprovementsResponse, error) {
	if input.RecipientType == "" {
		input.RecipientType = "professional"
	}

	result := agent.SuggestImprovements(input.EmailContent, input.RecipientType)

	return nil, SuggestImprovementsResponse{
		Suggestions:      result.Suggestions,
		TotalSuggestions: result.TotalSuggestions,
		RecipientType:    result.RecipientType,
	}, nil
}
