package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const installedAppCredentials = `{
	"installed": {
		"client_id": "client-id.apps.googleusercontent.com",
		"project_id": "test-project",
		"auth_uri": "https://accounts.google.com/o/oauth2/auth",
		"token_uri": "https://oauth2.googleapis.com/token",
		"client_secret": "secret",
		"redirect_uris": ["http://localhost"]
	}
}`

func writeCredentials(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(installedAppCredentials), 0600))
	return path
}

func writeToken(t *testing.T, path string, tok *oauth2.Token) {
	t.Helper()
	b, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0600))
}

func newTestAuthenticator(t *testing.T, credentialsPath string) *Authenticator {
	t.Helper()
	a := NewAuthenticator(credentialsPath, filepath.Join(t.TempDir(), "token.json"), nil, zap.NewNop())
	a.retryDelay = time.Millisecond
	return a
}

func TestAuthenticateMissingCredentialsFailsFast(t *testing.T) {
	a := newTestAuthenticator(t, filepath.Join(t.TempDir(), "nope.json"))
	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		t.Error("consent flow must not run without credentials")
		return nil, nil
	}

	start := time.Now()
	_, _, err := a.Authenticate(context.Background())

	require.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.Less(t, time.Since(start), time.Second, "missing credentials must not trigger retries")
}

func TestAuthenticateWithValidToken(t *testing.T) {
	a := newTestAuthenticator(t, writeCredentials(t))
	writeToken(t, a.TokenPath, &oauth2.Token{
		AccessToken: "valid-token",
		Expiry:      time.Now().Add(time.Hour),
	})

	consentCalled := false
	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		consentCalled = true
		return nil, errors.New("unexpected")
	}

	result, tok, err := a.Authenticate(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Authenticated)
	assert.Equal(t, a.TokenPath, result.TokenPath)
	assert.False(t, consentCalled)

	got, err := tok.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "valid-token", got.AccessToken)
}

func TestAuthenticateNoTokenRunsConsentAndPersists(t *testing.T) {
	a := newTestAuthenticator(t, writeCredentials(t))

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "fresh", RefreshToken: "refresh", Expiry: expiry}, nil
	}

	result, _, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)

	// The token was persisted for the next run.
	b, err := os.ReadFile(a.TokenPath)
	require.NoError(t, err)

	var persisted oauth2.Token
	require.NoError(t, json.Unmarshal(b, &persisted))
	assert.Equal(t, "fresh", persisted.AccessToken)
	assert.Equal(t, "refresh", persisted.RefreshToken)

	info, err := os.Stat(a.TokenPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAuthenticateRetriesThenFails(t *testing.T) {
	a := newTestAuthenticator(t, writeCredentials(t))

	attempts := 0
	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		attempts++
		return nil, errors.New("user closed the browser")
	}

	_, _, err := a.Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestAuthenticateExpiredTokenWithoutRefreshReauthenticates(t *testing.T) {
	a := newTestAuthenticator(t, writeCredentials(t))
	writeToken(t, a.TokenPath, &oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	})

	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "renewed", Expiry: time.Now().Add(time.Hour)}, nil
	}

	_, tok, err := a.Authenticate(context.Background())
	require.NoError(t, err)

	got, err := tok.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "renewed", got.AccessToken)
}

func TestAuthenticateCorruptTokenFileReauthenticates(t *testing.T) {
	a := newTestAuthenticator(t, writeCredentials(t))
	require.NoError(t, os.WriteFile(a.TokenPath, []byte("{not json"), 0600))

	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "recovered", Expiry: time.Now().Add(time.Hour)}, nil
	}

	_, tok, err := a.Authenticate(context.Background())
	require.NoError(t, err)

	got, err := tok.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "recovered", got.AccessToken)
}

func TestAuthenticateExpiredTokenRefreshes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	a := newTestAuthenticator(t, writeCredentialsWithTokenURI(t, srv.URL))
	writeToken(t, a.TokenPath, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-me",
		Expiry:       time.Now().Add(-time.Hour),
	})

	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		t.Error("refreshable token must not trigger the consent flow")
		return nil, errors.New("unexpected")
	}

	_, tok, err := a.Authenticate(context.Background())
	require.NoError(t, err)

	got, err := tok.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "refreshed", got.AccessToken)
}

func TestAuthenticateRefreshFailureDiscardsTokenFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	a := newTestAuthenticator(t, writeCredentialsWithTokenURI(t, srv.URL))
	writeToken(t, a.TokenPath, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	})

	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "reissued", Expiry: time.Now().Add(time.Hour)}, nil
	}

	_, tok, err := a.Authenticate(context.Background())
	require.NoError(t, err)

	got, err := tok.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "reissued", got.AccessToken)
}

func writeCredentialsWithTokenURI(t *testing.T, tokenURI string) string {
	t.Helper()
	creds := map[string]map[string]any{
		"installed": {
			"client_id":     "client-id.apps.googleusercontent.com",
			"project_id":    "test-project",
			"auth_uri":      "https://accounts.google.com/o/oauth2/auth",
			"token_uri":     tokenURI,
			"client_secret": "secret",
			"redirect_uris": []string{"http://localhost"},
		},
	}
	b, err := json.Marshal(creds)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, b, 0600))
	return path
}

func TestAuthenticateCancelledContext(t *testing.T) {
	a := newTestAuthenticator(t, writeCredentials(t))
	a.retryDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	a.Consent = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		cancel()
		return nil, errors.New("flow interrupted")
	}

	_, _, err := a.Authenticate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
