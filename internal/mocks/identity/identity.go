package identity

// Package identity contains simple hand-written test doubles for the
// identity and store ports. These are lightweight and suitable for unit
// tests without codegen.

import (
	"context"

	domainauth "github.com/target/todo-sync/internal/domain/auth"
	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.DurableStore     = (*MemoryStore)(nil)
)

// MockIdentityProvider simulates an identity provider for tests. Each
// operation can be overridden with a func field; the defaults model a
// provider with a single known account and no active session.
type MockIdentityProvider struct {
	SignupFunc      func(ctx context.Context, in ports.SignupInput) (domainauth.User, error)
	LoginFunc       func(ctx context.Context, in ports.LoginInput) error
	CurrentUserFunc func(ctx context.Context) (domainauth.User, error)
	LogoutFunc      func(ctx context.Context) error

	// DefaultUser is returned by CurrentUser after a successful default
	// Login or Signup.
	DefaultUser domainauth.User

	loggedIn bool
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultUser: domainauth.User{
			ID:    "mock-user-1",
			Name:  "Mock User",
			Email: "mock.user@example.com",
		},
	}
}

func (m *MockIdentityProvider) Signup(ctx context.Context, in ports.SignupInput) (domainauth.User, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, in)
	}
	user := m.DefaultUser
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	m.DefaultUser = user
	return user, nil
}

func (m *MockIdentityProvider) Login(ctx context.Context, in ports.LoginInput) error {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, in)
	}
	m.loggedIn = true
	return nil
}

func (m *MockIdentityProvider) CurrentUser(ctx context.Context) (domainauth.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	if !m.loggedIn {
		return domainauth.User{}, apperrors.Unauthorized("no active session")
	}
	return m.DefaultUser, nil
}

func (m *MockIdentityProvider) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	m.loggedIn = false
	return nil
}

// MemoryStore is an in-memory DurableStore for unit tests. It records the
// number of writes so tests can assert save suppression.
type MemoryStore struct {
	values map[string]string

	// SetCalls counts writes, including overwrites.
	SetCalls int
	// GetErr and SetErr, when set, are returned by every call.
	GetErr error
	SetErr error
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	value, ok := m.values[key]
	if !ok {
		return "", apperrors.NotFoundf("no value for key %q", key)
	}
	return value, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.SetCalls++
	m.values[key] = value
	return nil
}

// Seed stores a value without counting it as a save.
func (m *MemoryStore) Seed(key, value string) {
	m.values[key] = value
}

// Value returns the stored value and whether it exists.
func (m *MemoryStore) Value(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}
