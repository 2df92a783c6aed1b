package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pydevup/research-email-multi-agent-system/internal/gmail"
	"github.com/pydevup/research-email-multi-agent-system/internal/validate"
)

type CreateDraftRequest struct {
	To      []string `json:"to" jsonschema:"recipient email addresses"`
	Subject string   `json:"subject" jsonschema:"email subject line"`
	Body    string   `json:"body" jsonschema:"email body content"`
	CC      []string `json:"cc,omitempty" jsonschema:"CC recipients"`
	BCC     []string `json:"bcc,omitempty" jsonschema:"BCC recipients"`
}

type CreateDraftResponse struct {
	Success    bool     `json:"success" jsonschema:"whether the draft was created"`
	DraftID    string   `json:"draft_id,omitempty" jsonschema:"Gmail draft ID"`
	MessageID  string   `json:"message_id,omitempty" jsonschema:"Gmail message ID"`
	Recipients []string `json:"recipients,omitempty" jsonschema:"resolved recipients"`
	Subject    string   `json:"subject,omitempty" jsonschema:"draft subject"`
}

type draftSvc interface {
	CreateDraft(ctx context.Context, req gmail.DraftRequest) (*gmail.DraftResult, error)
}

func NewCreateDraft(svc draftSvc) *CreateDraft {
	return &CreateDraft{
		svc: svc,
	}
}

type CreateDraft struct {
	svc draftSvc
}

func (t *CreateDraft) CreateDraft(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CreateDraftRequest,
) (*mcp.CallToolResult, CreateDraftResponse, error) {
	all := make([]string, 0, len(input.To)+len(input.CC)+len(input.BCC))
	all = append(all, input.To...)
	all = append(all, input.CC...)
	all = append(all, input.BCC...)

	validation := validate.Emails(all)
	if validation.TotalInvalid > 0 {
		return nil, CreateDraftResponse{}, fmt.Errorf(
			"invalid email addresses: %s", strings.Join(validation.InvalidEmails, ", "))
	}

	result, err := t.svc.CreateDraft(ctx, gmail.DraftRequest{
		To:      input.To,
		Subject: input.Subject,
		Body:    input.Body,
		CC:      input.CC,
		BCC:     input.BCC,
	})
	if err != nil {
		return nil, CreateDraftResponse{}, fmt.Errorf("svc.CreateDraft failed: %w", err)
	}

	return nil, CreateDraftResponse{
		Success:    result.Success,
		DraftID:    result.DraftID,
		MessageID:  result.MessageID,
		Recipients: result.Recipients,
		Subject:    result.Subject,
	}, nil
}
