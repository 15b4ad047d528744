package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	domainauth "github.com/target/todo-sync/internal/domain/auth"
	"github.com/target/todo-sync/internal/domain/todo"
	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

// TodoServiceOptions groups dependencies for TodoService.
type TodoServiceOptions struct {
	Store  ports.DurableStore
	Logger *slog.Logger
	// NewID overrides todo ID generation; defaults to uuid.NewString.
	NewID func() string
}

// TodoService owns the in-memory todo collection and keeps it synchronized
// with the durable store, scoped to the currently authenticated user. It
// observes session state via OnSessionChange (registered as a
// SessionService subscriber): it loads on the transition into an
// authenticated, resolved-user state, saves on every mutation while that
// state holds, and clears memory on logout without touching the store.
type TodoService struct {
	store  ports.DurableStore
	logger *slog.Logger
	newID  func() string

	mu    sync.Mutex
	todos todo.Collection
	// user is the engine's cached resolved user. It is set only by the
	// load transition and cleared on logout, so every save key refers to a
	// user whose load has already been applied.
	user *domainauth.User
	// wasAuthenticated remembers the previous authenticated flag. The
	// logout transition must be detected from this explicit flag because
	// the authenticated flag and the resolved user do not update
	// atomically: auth may read true one change before the user resolves,
	// and that gap is not a logout.
	wasAuthenticated bool
}

// NewTodoService constructs a new TodoService.
func NewTodoService(opts TodoServiceOptions) *TodoService {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &TodoService{
		store:  opts.Store,
		logger: opts.Logger,
		newID:  newID,
	}
}

// OnSessionChange reacts to a session state transition. It is the
// subscription target for SessionService.Subscribe.
func (s *TodoService) OnSessionChange(ctx context.Context, state domainauth.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	authenticated := state.Authenticated()
	resolved := state.User != nil && state.User.ID != ""

	if s.wasAuthenticated && !authenticated {
		// Logout: clear memory and the cached user; stored data stays.
		s.todos = nil
		s.user = nil
	}
	s.wasAuthenticated = authenticated

	if !authenticated || !resolved {
		return
	}

	if s.user == nil || s.user.ID != state.User.ID {
		if s.user != nil {
			// User switch without an intervening logout: the previous
			// user's collection must not survive a load miss.
			s.todos = nil
		}
		user := *state.User
		s.user = &user
		s.loadLocked(ctx)
	}
}

// loadLocked replaces the collection from the store at the cached user's
// key. An absent or unparseable stored value leaves the collection as-is:
// corruption is tolerated, not auto-healed.
func (s *TodoService) loadLocked(ctx context.Context) {
	key := todo.StorageKey(s.user.ID)
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if !apperrors.IsNotFound(err) && s.logger != nil {
			s.logger.Warn("load todos failed, keeping in-memory collection", "key", key, "error", err)
		}
		return
	}

	parsed, err := todo.Decode(value)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("stored todos unparseable, keeping in-memory collection", "key", key, "error", err)
		}
		return
	}
	s.todos = parsed
}

// saveLocked overwrites the store at the cached user's key with the full
// collection. Saves are suppressed entirely while no resolved user is
// cached; storage failures are logged, never surfaced.
func (s *TodoService) saveLocked(ctx context.Context) {
	if s.user == nil || s.user.ID == "" {
		return
	}

	encoded, err := s.todos.Encode()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("encode todos failed", "error", err)
		}
		return
	}

	key := todo.StorageKey(s.user.ID)
	if err := s.store.Set(ctx, key, encoded); err != nil && s.logger != nil {
		s.logger.Warn("persist todos failed", "key", key, "error", err)
	}
}

// Add prepends a new todo with a freshly generated ID merged with the
// caller's fields, then saves.
func (s *TodoService) Add(ctx context.Context, in todo.Input) todo.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.todos.Prepend(s.newID(), in)
	s.saveLocked(ctx)
	return created
}

// Update merges the input into the matching todo and saves. A missing ID is
// a no-op, not an error; it reports whether the todo existed.
func (s *TodoService) Update(ctx context.Context, id string, in todo.Input) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.todos.Apply(id, in)
	s.saveLocked(ctx)
	return found
}

// Remove deletes the matching todo and saves. A missing ID is a no-op.
func (s *TodoService) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.todos.Remove(id)
	s.saveLocked(ctx)
	return found
}

// Toggle flips Completed on the matching todo and saves. A missing ID is a
// no-op.
func (s *TodoService) Toggle(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.todos.Toggle(id)
	s.saveLocked(ctx)
	return found
}

// Todos returns a snapshot copy of the collection, newest first.
func (s *TodoService) Todos() todo.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.todos.Clone()
}
