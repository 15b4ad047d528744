package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

func TestMockIdentityProvider_DefaultFlow(t *testing.T) {
	provider := NewMockIdentityProvider()
	ctx := context.Background()

	_, err := provider.CurrentUser(ctx)
	require.Error(t, err, "no session before login")

	require.NoError(t, provider.Login(ctx, ports.LoginInput{Email: "mock.user@example.com", Password: "pw"}))

	user, err := provider.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", user.ID)

	require.NoError(t, provider.Logout(ctx))
	_, err = provider.CurrentUser(ctx)
	require.Error(t, err, "logout destroys the session")
}

func TestMockIdentityProvider_SignupAdoptsInput(t *testing.T) {
	provider := NewMockIdentityProvider()

	user, err := provider.Signup(context.Background(), ports.SignupInput{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "New User", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestMemoryStore_GetSet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "todoes_u1")
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, store.Set(ctx, "todoes_u1", `[]`))
	value, err := store.Get(ctx, "todoes_u1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)
	assert.Equal(t, 1, store.SetCalls)
}

func TestMemoryStore_SeedDoesNotCountAsSave(t *testing.T) {
	store := NewMemoryStore()
	store.Seed("todoes_u1", `[{"id":"1","text":"a","completed":false}]`)

	value, ok := store.Value("todoes_u1")
	assert.True(t, ok)
	assert.Contains(t, value, `"text":"a"`)
	assert.Zero(t, store.SetCalls)
}
