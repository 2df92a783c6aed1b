package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/auth"
	"github.com/pydevup/research-email-multi-agent-system/internal/gmail"
	"github.com/pydevup/research-email-multi-agent-system/internal/validate"
)

// EmailAgentName identifies the email agent as a delegation target.
const EmailAgentName = "email_agent"

const emailSystemPrompt = `You are a professional email composition assistant with access to Gmail API. Your primary goal is to create well-structured, professional email drafts based on user requirements.

Your capabilities:
1. **Email Composition**: Create professional email drafts with appropriate tone and structure
2. **Gmail Integration**: Create actual Gmail drafts that users can review and send
3. **Email Validation**: Validate email addresses before creating drafts

When creating emails:
- Use appropriate greetings and closings based on the recipient
- Structure content logically with clear paragraphs
- Maintain professional tone while being approachable
- Include all necessary context and information
- Ensure emails are concise but complete
- Follow standard email etiquette

Always verify email addresses before creating drafts and provide clear feedback on the draft creation process.`

type gmailAuthenticator interface {
	Authenticate(ctx context.Context) (*auth.Result, *auth.Token, error)
}

type draftCreator interface {
	CreateDraft(ctx context.Context, req gmail.DraftRequest) (*gmail.DraftResult, error)
}

// NewEmailAgent assembles the email agent: a runner whose tools are
// restricted to Gmail operations.
func NewEmailAgent(client LLMClient, model string, deps EmailDeps, authn gmailAuthenticator, drafts draftCreator, log *zap.Logger) *Runner {
	if deps.SessionID != "" {
		log = log.With(zap.String("session_id", deps.SessionID))
	}

	tools := []ToolDef{
		{
			Name:        "authenticate_gmail",
			Description: "Authenticate with Gmail API",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Handler: func(ctx context.Context, _ json.RawMessage) (any, error) {
				result, _, err := authn.Authenticate(ctx)
				if err != nil {
					log.Error("gmail authentication failed", zap.Error(err))
					return map[string]any{
						"success":       false,
						"authenticated": false,
						"error":         err.Error(),
					}, nil
				}
				return result, nil
			},
		},
		{
			Name:        "create_gmail_draft",
			Description: "Create a Gmail draft. Validates all recipient addresses first.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"to":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Recipient email addresses"},
					"subject": map[string]any{"type": "string", "description": "Email subject line"},
					"body":    map[string]any{"type": "string", "description": "Email body content"},
					"cc":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Optional CC recipients"},
					"bcc":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Optional BCC recipients"},
				},
				"required": []string{"to", "subject", "body"},
			},
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					To      []string `json:"to"`
					Subject string   `json:"subject"`
					Body    string   `json:"body"`
					CC      []string `json:"cc"`
					BCC     []string `json:"bcc"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}

				all := make([]string, 0, len(in.To)+len(in.CC)+len(in.BCC))
				all = append(all, in.To...)
				all = append(all, in.CC...)
				all = append(all, in.BCC...)

				validation := validate.Emails(all)
				if validation.TotalInvalid > 0 {
					return map[string]any{
						"success":        false,
						"error":          "Invalid email addresses: " + strings.Join(validation.InvalidEmails, ", "),
						"valid_emails":   validation.ValidEmails,
						"invalid_emails": validation.InvalidEmails,
					}, nil
				}

				result, err := drafts.CreateDraft(ctx, gmail.DraftRequest{
					To:      in.To,
					Subject: in.Subject,
					Body:    in.Body,
					CC:      in.CC,
					BCC:     in.BCC,
				})
				if err != nil {
					log.Error("draft creation failed", zap.Error(err))
					return map[string]any{
						"success": false,
						"error":   err.Error(),
						"to":      in.To,
						"subject": in.Subject,
					}, nil
				}

				return result, nil
			},
		},
		{
			Name:        "validate_emails",
			Description: "Validate email addresses",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"emails": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Email addresses to validate"},
				},
				"required": []string{"emails"},
			},
			Handler: func(_ context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Emails []string `json:"emails"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}
				return validate.Emails(in.Emails), nil
			},
		},
		{
			Name:        "suggest_email_improvements",
			Description: "Suggest improvements for email content",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"email_content":  map[string]any{"type": "string", "description": "The email content to analyze"},
					"recipient_type": map[string]any{"type": "string", "description": "Type of recipient: professional, casual or formal"},
				},
				"required": []string{"email_content"},
			},
			Handler: func(_ context.Context, args json.RawMessage) (any, error) {
				var in struct {
					EmailContent  string `json:"email_content"`
					RecipientType string `json:"recipient_type"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}
				if in.RecipientType == "" {
					in.RecipientType = "professional"
				}
				return SuggestImprovements(in.EmailContent, in.RecipientType), nil
			},
		},
	}

	return NewRunner(EmailAgentName, client, model, emailSystemPrompt, tools, log)
}

// ImprovementResult lists deterministic suggestions for an email body.
type ImprovementResult struct {
	Success          bool     `json:"success"`
	Suggestions      []string `json:"suggestions"`
	TotalSuggestions int      `json:"total_suggestions"`
	RecipientType    string   `json:"recipient_type"`
}

// SuggestImprovements runs heuristic checks over email content: length
// thresholds, punctuation patterns, pronoun ratio, and a tone template keyed
// by recipient type. No external call is made.
func SuggestImprovements(content, recipientType string) ImprovementResult {
	var suggestions []string

	if len(content) > 1000 {
		suggestions = append(suggestions, "Consider making the email more concise. Aim for 300-500 words for better readability.")
	}
	if len(content) < 50 {
		suggestions = append(suggestions, "The email might be too brief. Consider adding more context or details.")
	}

	if strings.Contains(content, "!!!") {
		suggestions = append(suggestions, "Avoid excessive exclamation marks for professional emails.")
	}

	if strings.Count(content, "I") > strings.Count(content, "you")*2 {
		suggestions = append(suggestions, "Consider using more 'you-focused' language to engage the recipient.")
	}

	switch recipientType {
	case "professional":
		suggestions = append(suggestions, "Maintain professional tone with clear structure and formal language.")
	case "casual":
		suggestions = append(suggestions, "Use friendly, approachable language while maintaining clarity.")
	case "formal":
		suggestions = append(suggestions, "Use formal language with proper salutations and closings.")
	}

	return ImprovementResult{
		Success:          true,
		Suggestions:      suggestions,
		TotalSuggestions: len(suggestions),
		RecipientType:    recipientType,
	}
}
