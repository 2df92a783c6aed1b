package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// ErrCredentialsNotFound indicates the credentials file is missing. This is a
// hard precondition failure: no retries are attempted.
var ErrCredentialsNotFound = errors.New("gmail credentials file not found")

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// Result describes the outcome of a successful authentication.
type Result struct {
	Success       bool      `json:"success"`
	Authenticated bool      `json:"authenticated"`
	Scopes        []string  `json:"scopes"`
	TokenPath     string    `json:"token_path"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

// Authenticator drives the token lifecycle for one credentials/token path
// pair: load persisted token, refresh if expired, fall back to the interactive
// consent flow, persist the outcome. The whole attempt is retried up to three
// times with a fixed, cancellable delay.
type Authenticator struct {
	CredentialsPath string
	TokenPath       string
	Scopes          []string

	// Consent runs the interactive flow. Overridable so tests never open a
	// browser or listen on real ports.
	Consent func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)

	retryDelay time.Duration
	log        *zap.Logger
}

// NewAuthenticator builds an Authenticator with the default compose scope.
func NewAuthenticator(credentialsPath, tokenPath string, scopes []string, log *zap.Logger) *Authenticator {
	if len(scopes) == 0 {
		scopes = []string{gmail.GmailComposeScope}
	}
	return &Authenticator{
		CredentialsPath: credentialsPath,
		TokenPath:       tokenPath,
		Scopes:          scopes,
		retryDelay:      retryDelay,
		log:             log,
	}
}

// Config parses the credentials file into an oauth2 config. Absence or
// malformation is a hard failure.
func (a *Authenticator) Config() (*oauth2.Config, error) {
	b, err := os.ReadFile(a.CredentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, a.CredentialsPath)
		}
		return nil, fmt.Errorf("os.ReadFile failed: %w", err)
	}

	cfg, err := google.ConfigFromJSON(b, a.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("google.ConfigFromJSON failed: %w", err)
	}

	return cfg, nil
}

// Authenticate runs the lifecycle state machine and returns the resulting
// token manager alongside the structured result.
func (a *Authenticator) Authenticate(ctx context.Context) (*Result, *Token, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		tok, err := a.attempt(ctx, cfg)
		if err == nil {
			t, _ := tok.OAuthToken()
			a.log.Info("gmail authentication successful", zap.Strings("scopes", a.Scopes))
			return &Result{
				Success:       true,
				Authenticated: true,
				Scopes:        a.Scopes,
				TokenPath:     a.TokenPath,
				ExpiresAt:     t.Expiry,
			}, tok, nil
		}

		lastErr = err
		a.log.Error("gmail authentication attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(a.retryDelay):
		}
	}

	return nil, nil, fmt.Errorf("gmail authentication failed after %d attempts: %w", maxAttempts, lastErr)
}

func (a *Authenticator) attempt(ctx context.Context, cfg *oauth2.Config) (*Token, error) {
	tok, err := NewToken(cfg, a.TokenPath, a.log)
	if err != nil {
		// A corrupt token file forces re-authentication instead of failing.
		a.log.Warn("token load failed, discarding token file", zap.Error(err))
		_ = os.Remove(a.TokenPath)
		if tok, err = NewToken(cfg, a.TokenPath, a.log); err != nil {
			return nil, fmt.Errorf("NewToken failed: %w", err)
		}
	}

	if tok.Valid() {
		return tok, nil
	}

	if _, err := tok.OAuthToken(); err == nil && tok.HasRefreshToken() {
		if err := tok.Refresh(ctx); err != nil {
			a.log.Warn("token refresh failed, re-authenticating", zap.Error(err))
			tok.Discard()
		} else {
			if err := tok.Persist(); err != nil {
				return nil, fmt.Errorf("tok.Persist failed: %w", err)
			}
			return tok, nil
		}
	}

	consent := a.Consent
	if consent == nil {
		consent = func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
			return newConsentServer(cfg, a.log).Run(ctx)
		}
	}

	fresh, err := consent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("consent flow failed: %w", err)
	}

	tok.Set(fresh)
	if err := tok.Persist(); err != nil {
		return nil, fmt.Errorf("tok.Persist failed: %w", err)
	}

	return tok, nil
}
