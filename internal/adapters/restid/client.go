package restid

// Package restid provides an IdentityProvider backed by a hosted REST
// identity service (account create, email/password sessions, account
// lookup, session teardown). Session continuity uses the service's
// cookies; account payload fields are extracted with configurable
// JMESPath expressions so claim mapping is deployment-configurable.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/todo-sync/internal/domain/auth"
	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

const defaultTimeout = 30 * time.Second

// ClaimConfig holds JMESPath expressions evaluated against the provider's
// account payload. Identifiers containing special characters (such as the
// provider's "$id") must be quoted per JMESPath syntax.
type ClaimConfig struct {
	UserID string
	Name   string
	Email  string
}

// defaultClaims matches the hosted provider's account payload shape.
func defaultClaims() ClaimConfig {
	return ClaimConfig{
		UserID: `"$id"`,
		Name:   "name",
		Email:  "email",
	}
}

// Config holds configuration for the REST identity client.
type Config struct {
	// BaseURL is the provider API root, e.g. https://cloud.example.com/v1.
	BaseURL string
	// ProjectID scopes requests to a provider project.
	ProjectID string
	// Claims overrides account payload field extraction; zero fields fall
	// back to the provider defaults.
	Claims ClaimConfig
	// HTTPClient is optional; a cookie-carrying client is built when nil.
	HTTPClient *http.Client
}

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return errors.New("empty expression")
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// Client implements ports.IdentityProvider against the REST provider.
type Client struct {
	baseURL    string
	projectID  string
	claims     ClaimConfig
	httpClient *http.Client
	evaluator  JMESPathEvaluator
}

// NewClient constructs a REST identity client, validating the claim
// expressions up front.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rest identity: BaseURL is required")
	}

	claims := cfg.Claims
	defaults := defaultClaims()
	if claims.UserID == "" {
		claims.UserID = defaults.UserID
	}
	if claims.Name == "" {
		claims.Name = defaults.Name
	}
	if claims.Email == "" {
		claims.Email = defaults.Email
	}

	evaluator := jmespathLibEvaluator{}
	for field, expr := range map[string]string{
		"user id": claims.UserID,
		"name":    claims.Name,
		"email":   claims.Email,
	} {
		if err := evaluator.Validate(expr); err != nil {
			return nil, fmt.Errorf("rest identity: invalid %s claim expression %q: %w", field, expr, err)
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("rest identity: cookie jar: %w", err)
		}
		httpClient = &http.Client{Timeout: defaultTimeout, Jar: jar}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		projectID:  cfg.ProjectID,
		claims:     claims,
		httpClient: httpClient,
		evaluator:  evaluator,
	}, nil
}

func (c *Client) Signup(ctx context.Context, in ports.SignupInput) (domainauth.User, error) {
	payload := map[string]string{
		"userId":   "unique()",
		"email":    in.Email,
		"password": in.Password,
	}
	if in.Name != "" {
		payload["name"] = in.Name
	}

	body, err := c.do(ctx, http.MethodPost, "/account", payload)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("create account: %w", err)
	}
	return c.mapUser(body)
}

func (c *Client) Login(ctx context.Context, in ports.LoginInput) error {
	payload := map[string]string{
		"email":    in.Email,
		"password": in.Password,
	}
	if _, err := c.do(ctx, http.MethodPost, "/account/sessions/email", payload); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (c *Client) CurrentUser(ctx context.Context) (domainauth.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/account", nil)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("get account: %w", err)
	}
	return c.mapUser(body)
}

func (c *Client) Logout(ctx context.Context) error {
	// Deletes all of the principal's sessions, not only the current one.
	if _, err := c.do(ctx, http.MethodDelete, "/account/sessions", nil); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// do issues a request and returns the decoded response body for 2xx
// statuses. Non-2xx statuses map onto the application error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.projectID != "" {
		req.Header.Set("X-Project-ID", c.projectID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "identity provider unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "read provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode provider response")
	}
	return body, nil
}

// mapUser extracts the domain user from an account payload via the
// configured claim expressions.
func (c *Client) mapUser(body map[string]any) (domainauth.User, error) {
	id, err := c.stringClaim(c.claims.UserID, body)
	if err != nil {
		return domainauth.User{}, err
	}
	if id == "" {
		return domainauth.User{}, apperrors.Internal("provider response is missing the user id")
	}

	name, err := c.stringClaim(c.claims.Name, body)
	if err != nil {
		return domainauth.User{}, err
	}
	email, err := c.stringClaim(c.claims.Email, body)
	if err != nil {
		return domainauth.User{}, err
	}

	return domainauth.User{ID: id, Name: name, Email: email}, nil
}

func (c *Client) stringClaim(expr string, body map[string]any) (string, error) {
	v, err := c.evaluator.Evaluate(expr, any(body))
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrCodeInternal, "evaluate claim expression %q", expr)
	}
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	default:
		return fmt.Sprint(value), nil
	}
}

// providerError is the provider's error body shape.
type providerError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// statusError maps provider HTTP statuses onto the application taxonomy:
// 401 invalid credentials, 404 unknown account, 409 duplicate account,
// 400 validation; everything else is internal.
func statusError(status int, body []byte) error {
	var pe providerError
	_ = json.Unmarshal(body, &pe)
	message := pe.Message
	if message == "" {
		message = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case http.StatusNotFound:
		return apperrors.NotFound(message)
	case http.StatusConflict:
		return apperrors.Conflict(message)
	case http.StatusBadRequest:
		return apperrors.Validation(message)
	default:
		return apperrors.Internalf("provider returned status %d: %s", status, message)
	}
}
