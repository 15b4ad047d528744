package ports

// Package ports defines interfaces (hexagonal ports) for the identity and
// storage collaborators. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/todo-sync/internal/domain/auth"
)

// SignupInput carries inputs for creating an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries credentials for establishing a session.
type LoginInput struct {
	Email    string
	Password string
}

// IdentityProvider is the remote service owning accounts and sessions.
//
// Error taxonomy (internal/errors codes):
//   - Signup: conflict (duplicate account), validation, internal
//   - Login: unauthorized (invalid credentials), not_found (unknown account), internal
//   - CurrentUser: any error means no session; callers treat absence and
//     failure identically
//   - Logout: best-effort; destroys all sessions for the current principal
type IdentityProvider interface {
	Signup(ctx context.Context, in SignupInput) (domainauth.User, error)
	Login(ctx context.Context, in LoginInput) error
	CurrentUser(ctx context.Context) (domainauth.User, error)
	Logout(ctx context.Context) error
}
