package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/todo-sync/internal/domain/auth"
	"github.com/target/todo-sync/internal/domain/todo"
	apperrors "github.com/target/todo-sync/internal/errors"
	fakes "github.com/target/todo-sync/internal/mocks/identity"
	"github.com/target/todo-sync/internal/ports"
)

// wireApp builds the session and todo services wired the way the client
// application wires them: the todo engine subscribes to session changes.
func wireApp(provider *fakes.MockIdentityProvider, store *fakes.MemoryStore) (*SessionService, *TodoService) {
	sessions := NewSessionService(SessionServiceOptions{Provider: provider})
	todos := NewTodoService(TodoServiceOptions{Store: store, NewID: sequentialIDs()})
	sessions.Subscribe(todos.OnSessionChange)
	return sessions, todos
}

func TestWorkflow_RestoreThenMutateThenLogout(t *testing.T) {
	provider := fakes.NewMockIdentityProvider()
	store := fakes.NewMemoryStore()
	store.Seed("todoes_mock-user-1", `[{"id":"old","text":"from last session","completed":false}]`)

	ctx := context.Background()
	require.NoError(t, provider.Login(ctx, ports.LoginInput{Email: "mock.user@example.com", Password: "pw"}))

	sessions, todos := wireApp(provider, store)
	sessions.Start(ctx)

	require.True(t, sessions.State().Authenticated(), "restored session")
	restored := todos.Todos()
	require.Len(t, restored, 1)
	assert.Equal(t, "from last session", restored[0].Text)

	text := "new this session"
	todos.Add(ctx, todo.Input{Text: &text})
	stored, _ := store.Value("todoes_mock-user-1")
	assert.Contains(t, stored, "new this session")
	assert.Contains(t, stored, "from last session")

	sessions.Logout(ctx)
	assert.Empty(t, todos.Todos())
	after, _ := store.Value("todoes_mock-user-1")
	assert.Equal(t, stored, after, "logout is a memory reset only")
}

func TestWorkflow_LoginAfterColdStart(t *testing.T) {
	provider := fakes.NewMockIdentityProvider()
	store := fakes.NewMemoryStore()
	ctx := context.Background()

	sessions, todos := wireApp(provider, store)
	sessions.Start(ctx)
	require.False(t, sessions.State().Authenticated())

	require.NoError(t, sessions.Login(ctx, "mock.user@example.com", "pw"))
	assert.Empty(t, todos.Todos(), "fresh user starts with an empty collection")

	text := "first ever"
	todos.Add(ctx, todo.Input{Text: &text})
	_, ok := store.Value("todoes_mock-user-1")
	assert.True(t, ok)
}

func TestWorkflow_SwitchingUsersIsolatesCollections(t *testing.T) {
	accounts := map[string]domainauth.User{
		"a@example.com": {ID: "user-a", Email: "a@example.com"},
		"b@example.com": {ID: "user-b", Email: "b@example.com"},
	}
	var active *domainauth.User

	provider := fakes.NewMockIdentityProvider()
	provider.LoginFunc = func(_ context.Context, in ports.LoginInput) error {
		user, ok := accounts[in.Email]
		if !ok {
			return apperrors.NotFound("account not found")
		}
		active = &user
		return nil
	}
	provider.CurrentUserFunc = func(context.Context) (domainauth.User, error) {
		if active == nil {
			return domainauth.User{}, apperrors.Unauthorized("no session")
		}
		return *active, nil
	}
	provider.LogoutFunc = func(context.Context) error {
		active = nil
		return nil
	}

	store := fakes.NewMemoryStore()
	ctx := context.Background()
	sessions, todos := wireApp(provider, store)
	sessions.Start(ctx)

	// A logs in and builds up a list.
	require.NoError(t, sessions.Login(ctx, "a@example.com", "pw"))
	text := "a's secret errand"
	todos.Add(ctx, todo.Input{Text: &text})
	storedA, _ := store.Value("todoes_user-a")

	// A logs out, B logs in. B must never observe A's todos and B's
	// writes must never land under A's key.
	sessions.Logout(ctx)
	require.Empty(t, todos.Todos())

	require.NoError(t, sessions.Login(ctx, "b@example.com", "pw"))
	assert.Empty(t, todos.Todos(), "B starts from B's (empty) stored collection")

	textB := "b's task"
	todos.Add(ctx, todo.Input{Text: &textB})

	finalA, _ := store.Value("todoes_user-a")
	assert.Equal(t, storedA, finalA)
	storedB, _ := store.Value("todoes_user-b")
	assert.Contains(t, storedB, "b's task")
	assert.NotContains(t, storedB, "secret errand")

	// Back to A: the last saved collection comes back exactly.
	sessions.Logout(ctx)
	require.NoError(t, sessions.Login(ctx, "a@example.com", "pw"))
	restored := todos.Todos()
	require.Len(t, restored, 1)
	assert.Equal(t, "a's secret errand", restored[0].Text)
}
