package oidcid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

// fakeIssuer serves discovery, password-grant token issuance, userinfo
// and revocation from a single httptest server.
type fakeIssuer struct {
	srv *httptest.Server

	password     string
	accessToken  string
	revoked      bool
	tokenCalls   int
	revokeStatus int
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	f := &fakeIssuer{
		password:     "hunter22",
		accessToken:  "at-123",
		revokeStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 f.srv.URL,
			"authorization_endpoint": f.srv.URL + "/auth",
			"token_endpoint":         f.srv.URL + "/token",
			"userinfo_endpoint":      f.srv.URL + "/userinfo",
			"revocation_endpoint":    f.srv.URL + "/revoke",
			"jwks_uri":               f.srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		if r.PostForm.Get("password") != f.password {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "wrong username or password",
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": f.accessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if f.revoked || r.Header.Get("Authorization") != "Bearer "+f.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":                "user-42",
			"name":               "Ana Tester",
			"preferred_username": "ana",
			"email":              "ana@example.com",
		})
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("token") == f.accessToken {
			f.revoked = true
		}
		w.WriteHeader(f.revokeStatus)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestProvider(t *testing.T, issuer *fakeIssuer) *Provider {
	t.Helper()
	provider, err := NewProvider(ProviderConfig{
		ClientID:     "todo-sync",
		ClientSecret: "test-secret",
		DiscoveryURL: issuer.srv.URL,
	})
	require.NoError(t, err)
	return provider
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	_, err := NewProvider(ProviderConfig{DiscoveryURL: "http://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client ID is required")

	_, err = NewProvider(ProviderConfig{ClientID: "client"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery URL is required")
}

func TestNewProvider_DiscoversRevocationEndpoint(t *testing.T) {
	issuer := newFakeIssuer(t)
	provider := newTestProvider(t, issuer)
	assert.Equal(t, issuer.srv.URL+"/revoke", provider.revocationURL)
}

func TestProvider_LoginThenCurrentUser(t *testing.T) {
	issuer := newFakeIssuer(t)
	provider := newTestProvider(t, issuer)
	ctx := context.Background()

	require.NoError(t, provider.Login(ctx, ports.LoginInput{
		Email:    "ana@example.com",
		Password: "hunter22",
	}))

	user, err := provider.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-42", user.ID)
	assert.Equal(t, "Ana Tester", user.Name)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestProvider_LoginBadPassword(t *testing.T) {
	issuer := newFakeIssuer(t)
	provider := newTestProvider(t, issuer)

	err := provider.Login(context.Background(), ports.LoginInput{
		Email:    "ana@example.com",
		Password: "nope",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "wrong username or password")
}

func TestProvider_CurrentUserWithoutSession(t *testing.T) {
	issuer := newFakeIssuer(t)
	provider := newTestProvider(t, issuer)

	_, err := provider.CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestProvider_Signup(t *testing.T) {
	issuer := newFakeIssuer(t)
	provider := newTestProvider(t, issuer)

	_, err := provider.Signup(context.Background(), ports.SignupInput{
		Email:    "new@example.com",
		Password: "pw",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProvider_LogoutRevokesToken(t *testing.T) {
	issuer := newFakeIssuer(t)
	provider := newTestProvider(t, issuer)
	ctx := context.Background()

	require.NoError(t, provider.Login(ctx, ports.LoginInput{
		Email:    "ana@example.com",
		Password: "hunter22",
	}))
	require.NoError(t, provider.Logout(ctx))
	assert.True(t, issuer.revoked)

	_, err := provider.CurrentUser(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestProvider_LogoutWithoutSessionIsNoop(t *testing.T) {
	issuer := newFakeIssuer(t)
	provider := newTestProvider(t, issuer)
	require.NoError(t, provider.Logout(context.Background()))
	assert.False(t, issuer.revoked)
}

func TestProvider_LogoutRevocationFailureStillDropsToken(t *testing.T) {
	issuer := newFakeIssuer(t)
	issuer.revokeStatus = http.StatusServiceUnavailable
	provider := newTestProvider(t, issuer)
	ctx := context.Background()

	require.NoError(t, provider.Login(ctx, ports.LoginInput{
		Email:    "ana@example.com",
		Password: "hunter22",
	}))
	err := provider.Logout(ctx)
	require.Error(t, err)

	_, err = provider.CurrentUser(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}
