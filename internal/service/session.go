package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/target/todo-sync/internal/domain/auth"
	"github.com/target/todo-sync/internal/ports"
	"golang.org/x/sync/singleflight"
)

// Listener observes session state changes. The context is the one that
// triggered the transition; listeners run synchronously, in subscription
// order, outside the service's state lock.
type Listener func(ctx context.Context, state domainauth.SessionState)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Provider ports.IdentityProvider
	Logger   *slog.Logger
}

// SessionService owns the authentication lifecycle: the current user, the
// derived authenticated flag, and the loading flag covering the initial
// session-restore probe. It coordinates the identity provider and fans
// state transitions out to subscribers.
type SessionService struct {
	provider ports.IdentityProvider
	logger   *slog.Logger

	mu        sync.Mutex
	state     domainauth.SessionState
	listeners []Listener
	startOnce sync.Once

	// probe collapses concurrent CurrentUser calls into one provider request.
	probe singleflight.Group
}

// NewSessionService constructs a new SessionService. The service starts in
// the initializing state (loading, no user) until Start runs the restore
// probe.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	return &SessionService{
		provider: opts.Provider,
		logger:   opts.Logger,
		state:    domainauth.SessionState{Loading: true},
	}
}

// Subscribe registers a listener for session state changes. Subscriptions
// are expected to happen before Start; there is no unsubscribe.
func (s *SessionService) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns a snapshot of the current session state.
func (s *SessionService) State() domainauth.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotState(s.state)
}

// Start performs the one-time session-restore probe. Loading stays true
// until the probe resolves and never re-enters true afterward. Calling
// Start again is a no-op.
func (s *SessionService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		user, ok := s.currentUser(ctx)
		s.setState(ctx, func(st *domainauth.SessionState) {
			st.Loading = false
			if ok {
				st.User = &user
			}
		})
	})
}

// CurrentUser queries the provider for the session's user. Provider errors
// never propagate: session absence and "not logged in" are indistinguishable
// at this layer.
func (s *SessionService) CurrentUser(ctx context.Context) (domainauth.User, bool) {
	return s.currentUser(ctx)
}

func (s *SessionService) currentUser(ctx context.Context) (domainauth.User, bool) {
	v, err, _ := s.probe.Do("current-user", func() (any, error) {
		return s.provider.CurrentUser(ctx)
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("session probe resolved to unauthenticated", "error", err)
		}
		return domainauth.User{}, false
	}
	user, ok := v.(domainauth.User)
	if !ok || user.ID == "" {
		return domainauth.User{}, false
	}
	return user, true
}

// Signup delegates account creation to the provider, then logs in with the
// same credentials. Provider failures carry the internal/errors taxonomy
// (conflict for a duplicate account, validation, internal) for user-facing
// messaging; session state is not mutated on failure.
func (s *SessionService) Signup(ctx context.Context, name, email, password string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if password == "" {
		return errors.New("password is required")
	}

	if _, err := s.provider.Signup(ctx, ports.SignupInput{Name: name, Email: email, Password: password}); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return s.Login(ctx, email, password)
}

// Login establishes a remote session, then refreshes the resolved user via
// CurrentUser. A provider failure (unauthorized for invalid credentials,
// not_found for an unknown account, internal otherwise) is returned to the
// caller and leaves the state unauthenticated.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if password == "" {
		return errors.New("password is required")
	}

	if err := s.provider.Login(ctx, ports.LoginInput{Email: email, Password: password}); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	// The resolved user arrives from a second provider round trip; a failed
	// refresh leaves the session unauthenticated rather than erroring.
	user, ok := s.currentUser(ctx)
	s.setState(ctx, func(st *domainauth.SessionState) {
		if ok {
			st.User = &user
		} else {
			st.User = nil
		}
	})
	return nil
}

// Logout destroys the remote session and clears local state unconditionally.
// A failed remote call is logged and swallowed: the UI must fail safe toward
// logged out, never remain stuck authenticated.
func (s *SessionService) Logout(ctx context.Context) {
	if err := s.provider.Logout(ctx); err != nil && s.logger != nil {
		s.logger.Warn("remote logout failed, clearing local session anyway", "error", err)
	}
	s.setState(ctx, func(st *domainauth.SessionState) {
		st.User = nil
	})
}

// setState applies the mutation under the lock, then notifies listeners
// outside it with a snapshot.
func (s *SessionService) setState(ctx context.Context, mutate func(*domainauth.SessionState)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := snapshotState(s.state)
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, snapshot)
	}
}

// snapshotState copies the state so callers never alias the service's user.
func snapshotState(st domainauth.SessionState) domainauth.SessionState {
	if st.User != nil {
		user := *st.User
		st.User = &user
	}
	return st
}
