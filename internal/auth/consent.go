package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// consentServer runs the interactive OAuth consent flow: it listens on a
// loopback port, prints the authorization URL, and waits for the provider to
// redirect back with a code.
type consentServer struct {
	cfg *oauth2.Config
	log *zap.Logger

	mu         sync.Mutex
	stateStore map[string]time.Time
}

func newConsentServer(cfg *oauth2.Config, log *zap.Logger) *consentServer {
	return &consentServer{
		cfg:        cfg,
		log:        log,
		stateStore: make(map[string]time.Time),
	}
}

// Run blocks until the user completes the consent flow or ctx is done.
func (s *consentServer) Run(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return nil, fmt.Errorf("net.Listen failed: %w", err)
	}

	// The config is copied so the caller's redirect URL survives this flow.
	cfg := *s.cfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/oauth", ln.Addr().String())
	s.cfg = &cfg

	state, err := s.generateState()
	if err != nil {
		return nil, fmt.Errorf("generateState failed: %w", err)
	}

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle("/oauth", s.callbackHandler(tokenCh, errCh))
	srv := &http.Server{Handler: mux}

	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- fmt.Errorf("srv.Serve failed: %w", serveErr)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := s.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	s.log.Info("waiting for OAuth consent")
	fmt.Printf("Open the following link in your browser to authorize Gmail access:\n\n  %s\n\n", authURL)

	select {
	case tok := <-tokenCh:
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *consentServer) callbackHandler(tokenCh chan<- *oauth2.Token, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			return
		}
		if !s.validateState(state) {
			http.Error(w, "Invalid or expired state parameter", http.StatusBadRequest)
			return
		}

		tok, err := s.cfg.Exchange(r.Context(), code)
		if err != nil {
			s.log.Error("code exchange failed", zap.Error(err))
			http.Error(w, "Unable to authorize provided code", http.StatusBadRequest)
			errCh <- fmt.Errorf("cfg.Exchange failed: %w", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "Authorized. Token %s, expires %s. You can close this window.",
			maskLeft(tok.AccessToken), tok.Expiry.Format(time.RFC3339))

		tokenCh <- tok
	})
}

func (s *consentServer) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.stateStore[state] = now.Add(5 * time.Minute)

	for st, exp := range s.stateStore {
		if exp.Before(now) {
			delete(s.stateStore, st)
		}
	}

	return state, nil
}

func (s *consentServer) validateState(state string) bool {
	if state == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.stateStore[state]
	if !exists {
		return false
	}
	delete(s.stateStore, state)

	return !time.Now().After(expiry)
}

func maskLeft(s string) string {
	rs := []rune(s)
	for i := 0; i < len(rs)-4; i++ {
		rs[i] = 'X'
	}
	return string(rs)
}
