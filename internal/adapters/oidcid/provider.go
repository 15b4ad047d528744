package oidcid

// Package oidcid provides an IdentityProvider backed by an OIDC issuer
// using the resource owner password grant. The access token from a
// successful login is held in memory and backs CurrentUser via the
// issuer's userinfo endpoint until Logout revokes it.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/todo-sync/internal/domain/auth"
	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

// Provider implements the IdentityProvider interface against an OIDC issuer.
type Provider struct {
	config        *oauth2.Config
	revocationURL string
	httpClient    *http.Client

	oidcProvider *gooidc.Provider

	mu    sync.Mutex
	token *oauth2.Token
}

// ProviderConfig holds configuration for the OIDC identity provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC identity provider, fetching the
// discovery document once.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	var extra struct {
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	// Revocation is optional in discovery; Logout degrades to local reset.
	_ = op.Claims(&extra)

	scopes := strings.Fields(config.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		revocationURL: extra.RevocationEndpoint,
		httpClient:    httpClient,
		oidcProvider:  op,
	}, nil
}

// Signup is not supported; account provisioning lives with the issuer.
func (p *Provider) Signup(_ context.Context, _ ports.SignupInput) (domainauth.User, error) {
	return domainauth.User{}, apperrors.Validation("the OIDC issuer does not support self-service signup")
}

func (p *Provider) Login(ctx context.Context, in ports.LoginInput) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.PasswordCredentialsToken(ctx, in.Email, in.Password)
	if err != nil {
		return mapTokenError(err)
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	return nil
}

func (p *Provider) CurrentUser(ctx context.Context) (domainauth.User, error) {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()
	if token == nil {
		return domainauth.User{}, apperrors.Unauthorized("no active session")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return domainauth.User{}, mapTokenError(fmt.Errorf("fetch user info: %w", err))
	}

	var claims userInfoClaims
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return domainauth.User{}, fmt.Errorf("decode user info: %w", claimsErr)
	}

	user := mapUserInfoClaims(ui.Subject, claims)
	if user.ID == "" {
		return domainauth.User{}, apperrors.Internal("userinfo response is missing a subject")
	}
	return user, nil
}

// Logout revokes the current token with the issuer when a revocation
// endpoint was discovered, and always drops the local token.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	token := p.token
	p.token = nil
	p.mu.Unlock()

	if token == nil || p.revocationURL == "" {
		return nil
	}

	form := url.Values{
		"token":           {token.AccessToken},
		"token_type_hint": {"access_token"},
		"client_id":       {p.config.ClientID},
	}
	if p.config.ClientSecret != "" {
		form.Set("client_secret", p.config.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "revoke token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Internalf("revocation endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// userInfoClaims is the subset of userinfo claims the client consumes.
type userInfoClaims struct {
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

func mapUserInfoClaims(subject string, c userInfoClaims) domainauth.User {
	return domainauth.User{
		ID:    subject,
		Name:  firstNonEmpty(c.Name, c.PreferredUsername),
		Email: c.Email,
	}
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// mapTokenError translates oauth2 transport failures onto the
// application taxonomy. Token-endpoint rejections of the grant are
// credential failures; anything unreachable is unavailable.
func mapTokenError(err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		switch retrieve.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			msg := retrieve.ErrorDescription
			if msg == "" {
				msg = "the issuer rejected the credentials"
			}
			return apperrors.Unauthorized(msg)
		default:
			return apperrors.Internalf("token endpoint returned status %d", retrieve.Response.StatusCode)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "identity issuer unreachable")
}
