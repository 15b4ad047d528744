package devid

// Package devid provides a simple, config-driven IdentityProvider for local
// development. Accounts live in memory; sessions do not survive restarts.

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	domainauth "github.com/target/todo-sync/internal/domain/auth"
	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

// Config controls the dev identity provider behavior. When Email is set, a
// single account is seeded so the client can log in without signing up.
type Config struct {
	UserID   string
	Name     string
	Email    string
	Password string
}

type account struct {
	user     domainauth.User
	password string
}

// Provider implements ports.IdentityProvider for local development. It
// short-circuits the remote provider with in-memory accounts and a single
// active session, which is what a client application observes anyway.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]account
	session  *domainauth.User
}

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	p := &Provider{accounts: make(map[string]account)}
	if cfg.Email == "" {
		return p, nil
	}
	if cfg.Password == "" {
		return nil, errors.New("dev identity: Password is required when seeding an account")
	}
	id := cfg.UserID
	if id == "" {
		id = "dev-user"
	}
	p.accounts[normalizeEmail(cfg.Email)] = account{
		user:     domainauth.User{ID: id, Name: cfg.Name, Email: cfg.Email},
		password: cfg.Password,
	}
	return p, nil
}

func (p *Provider) Signup(_ context.Context, in ports.SignupInput) (domainauth.User, error) {
	if in.Email == "" {
		return domainauth.User{}, apperrors.ValidationField("email", "email is required")
	}
	if in.Password == "" {
		return domainauth.User{}, apperrors.ValidationField("password", "password is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	email := normalizeEmail(in.Email)
	if _, exists := p.accounts[email]; exists {
		return domainauth.User{}, apperrors.Conflictf("an account already exists for %s", in.Email)
	}

	user := domainauth.User{ID: uuid.NewString(), Name: in.Name, Email: in.Email}
	p.accounts[email] = account{user: user, password: in.Password}
	return user, nil
}

func (p *Provider) Login(_ context.Context, in ports.LoginInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[normalizeEmail(in.Email)]
	if !ok {
		return apperrors.NotFoundf("no account for %s", in.Email)
	}
	if acct.password != in.Password {
		return apperrors.Unauthorized("invalid email or password")
	}

	user := acct.user
	p.session = &user
	return nil
}

func (p *Provider) CurrentUser(_ context.Context) (domainauth.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return domainauth.User{}, apperrors.Unauthorized("no active session")
	}
	return *p.session, nil
}

func (p *Provider) Logout(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
