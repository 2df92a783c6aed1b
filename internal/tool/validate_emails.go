package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pydevup/research-email-multi-agent-system/internal/validate"
)

type ValidateEmailsRequest struct {
	Emails []string `json:"emails" jsonschema:"email addresses to validate"`
}

type ValidateEmailsResponse struct {
	ValidEmails      []string `json:"valid_emails" jsonschema:"addresses that passed validation"`
	InvalidEmails    []string `json:"invalid_emails" jsonschema:"addresses that failed validation"`
	SuspiciousEmails []string `json:"suspicious_emails" jsonschema:"valid addresses with suspicious domains"`
	TotalValid       int      `json:"total_valid" jsonschema:"count of valid addresses"`
	TotalInvalid     int      `json:"total_invalid" jsonschema:"count of invalid addresses"`
	TotalSuspicious  int      `json:"total_suspicious" jsonschema:"count of suspicious addresses"`
}

func NewValidateEmails() *ValidateEmails {
	return &ValidateEmails{}
}

type ValidateEmails struct{}

func (t *ValidateEmails) ValidateEmails(
	_ context.Context,
	req *mcp.CallToolRequest,
	input ValidateEmailsRequest,
) (*mcp.CallToolResult, ValidateEmailsResponse, error) {
	result := validate.Emails(input.Emails)

	return nil, ValidateEmailsResponse{
		ValidEmails:      result.ValidEmails,
		InvalidEmails:    result.InvalidEmails,
		SuspiciousEmails: result.SuspiciousEmails,
		TotalValid:       result.TotalValid,
		TotalInvalid:     result.TotalInvalid,
		TotalSuspicious:  result.TotalSuspicious,
	}, nil
}
