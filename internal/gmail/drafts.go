// Package gmail creates draft messages through the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/pydevup/research-email-multi-agent-system/internal/auth"
)

const gmailUserID = "me"

// Authenticator is the slice of the auth package this client needs.
type Authenticator interface {
	Authenticate(ctx context.Context) (*auth.Result, *auth.Token, error)
	Config() (*oauth2.Config, error)
}

// DraftRequest describes the draft to create.
type DraftRequest struct {
	To      []string
	Subject string
	Body    string
	CC      []string
	BCC     []string
}

// DraftResult maps the drafts.create response.
type DraftResult struct {
	Success    bool      `json:"success"`
	DraftID    string    `json:"draft_id"`
	MessageID  string    `json:"message_id"`
	ThreadID   string    `json:"thread_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Recipients []string  `json:"recipients"`
	Subject    string    `json:"subject"`
}

// Drafts creates Gmail drafts. The API service is constructed per call from a
// freshly authenticated token.
type Drafts struct {
	authn Authenticator
	log   *zap.Logger

	// newService is swappable for tests.
	newService func(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*gmailapi.Service, error)
}

// NewDrafts builds a drafts client on top of an authenticator.
func NewDrafts(authn Authenticator, log *zap.Logger) *Drafts {
	return &Drafts{
		authn: authn,
		log:   log,
		newService: func(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*gmailapi.Service, error) {
			return gmailapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
		},
	}
}

// CreateDraft authenticates, then posts a base64url-encoded MIME message to
// the drafts-create endpoint. Authentication retries already cover transient
// failures; a draft-creation failure surfaces immediately.
func (d *Drafts) CreateDraft(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	_, tok, err := d.authn.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	cfg, err := d.authn.Config()
	if err != nil {
		return nil, fmt.Errorf("authn.Config failed: %w", err)
	}

	t, err := tok.OAuthToken()
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	svc, err := d.newService(ctx, cfg, t)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	raw := base64.URLEncoding.EncodeToString(buildMIMEMessage(req))

	created, err := svc.Users.Drafts.Create(gmailUserID, &gmailapi.Draft{
		Message: &gmailapi.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drafts.Create failed: %w", err)
	}

	d.log.Info("gmail draft created", zap.Strings("recipients", req.To))

	result := &DraftResult{
		Success:    true,
		DraftID:    created.Id,
		CreatedAt:  time.Now(),
		Recipients: req.To,
		Subject:    req.Subject,
	}
	if created.Message != nil {
		result.MessageID = created.Message.Id
		result.ThreadID = created.Message.ThreadId
	}

	return result, nil
}

// buildMIMEMessage assembles an RFC 2822 text message. Address lists are
// comma-joined; the body is plain text.
func buildMIMEMessage(req DraftRequest) []byte {
	var b strings.Builder

	b.WriteString("To: " + strings.Join(req.To, ", ") + "\r\n")
	if len(req.CC) > 0 {
		b.WriteString("Cc: " + strings.Join(req.CC, ", ") + "\r\n")
	}
	if len(req.BCC) > 0 {
		b.WriteString("Bcc: " + strings.Join(req.BCC, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + req.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(req.Body)

	return []byte(b.String())
}
