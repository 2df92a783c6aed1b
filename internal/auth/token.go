// Package auth handles the Gmail OAuth2 credential lifecycle: loading a
// persisted token, refreshing it, running the interactive consent flow when
// nothing usable exists, and persisting the result.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrTokenNotSet indicates no OAuth token is available.
var ErrTokenNotSet = errors.New("no token defined")

// Token manages one persisted OAuth2 token with thread-safe operations.
// Token files are read and rewritten without file locking; concurrent
// authentication against the same path races, last writer wins.
type Token struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
	log         *zap.Logger
}

// NewToken creates a Token manager, loading the token file if it exists.
func NewToken(cfg *oauth2.Config, persistPath string, log *zap.Logger) (*Token, error) {
	t := &Token{
		cfg:         cfg,
		persistPath: persistPath,
		log:         log,
	}

	f, err := os.Open(persistPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("os.Open failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("token decode failed: %w", err)
	}
	t.token = token

	return t, nil
}

// OAuthToken returns the current token, or ErrTokenNotSet.
func (t *Token) OAuthToken() (*oauth2.Token, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil, ErrTokenNotSet
	}
	return t.token, nil
}

// Set replaces the in-memory token. Persist writes it to disk.
func (t *Token) Set(tok *oauth2.Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = tok
}

// Valid reports whether a token exists and has not expired.
func (t *Token) Valid() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token.Valid()
}

// HasRefreshToken reports whether an expired token can still be refreshed.
func (t *Token) HasRefreshToken() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token != nil && t.token.RefreshToken != ""
}

// Refresh exchanges the refresh token for a fresh access token and updates the
// in-memory token.
func (t *Token) Refresh(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token == nil {
		return ErrTokenNotSet
	}

	fresh, err := t.cfg.TokenSource(ctx, t.token).Token()
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}
	t.token = fresh

	return nil
}

// Persist saves the token to the token path with owner-only permissions.
func (t *Token) Persist() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil
	}

	f, err := os.OpenFile(t.persistPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(t.token); err != nil {
		return fmt.Errorf("token encode failed: %w", err)
	}

	return nil
}

// Discard drops the in-memory token and removes the token file. Used when a
// refresh fails and a full re-authentication is required.
func (t *Token) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = nil
	if err := os.Remove(t.persistPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.log.Warn("failed to remove token file", zap.String("path", t.persistPath), zap.Error(err))
	}
}
