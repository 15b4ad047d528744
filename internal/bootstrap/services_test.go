package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/todo-sync/config"
	"github.com/target/todo-sync/internal/adapters/devid"
	"github.com/target/todo-sync/internal/domain/todo"
	"github.com/target/todo-sync/internal/mocks/identity"
)

func TestBuildIdentityProvider_MockMode(t *testing.T) {
	prov, err := BuildIdentityProvider(IdentityBuildConfig{
		Identity: config.IdentityConfig{
			Mode: config.IdentityModeMock,
			Dev: config.DevIdentityConfig{
				UserID:   "dev-1",
				Name:     "Dev",
				Email:    "dev@example.com",
				Password: "devpass",
			},
		},
	})
	require.NoError(t, err)
	assert.IsType(t, &devid.Provider{}, prov)
}

func TestBuildIdentityProvider_RESTModeRequiresBaseURL(t *testing.T) {
	_, err := BuildIdentityProvider(IdentityBuildConfig{
		Identity: config.IdentityConfig{Mode: config.IdentityModeREST},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDENTITY_REST_BASE_URL")
}

func TestBuildIdentityProvider_RESTMode(t *testing.T) {
	prov, err := BuildIdentityProvider(IdentityBuildConfig{
		Identity: config.IdentityConfig{
			Mode: config.IdentityModeREST,
			REST: config.RESTIdentityConfig{BaseURL: "https://identity.example.com/v1"},
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, prov)
}

func TestBuildIdentityProvider_OIDCModeRequiresDiscovery(t *testing.T) {
	_, err := BuildIdentityProvider(IdentityBuildConfig{
		Identity: config.IdentityConfig{
			Mode: config.IdentityModeOIDC,
			OIDC: config.OIDCIdentityConfig{ClientID: "client"},
		},
	})
	require.Error(t, err)
}

func TestBuildIdentityProvider_UnsupportedMode(t *testing.T) {
	_, err := BuildIdentityProvider(IdentityBuildConfig{
		Identity: config.IdentityConfig{Mode: config.IdentityMode("ldap")},
	})
	require.Error(t, err)
}

func TestBuildApp_WiresTodoServiceToSessionChanges(t *testing.T) {
	provider := identity.NewMockIdentityProvider()
	store := identity.NewMemoryStore()
	ctx := context.Background()

	app := BuildApp(BuildConfig{Provider: provider, Store: store})
	require.NotNil(t, app.Sessions)
	require.NotNil(t, app.Todos)

	app.Sessions.Start(ctx)
	require.NoError(t, app.Sessions.Login(ctx, "mock.user@example.com", "pw"))

	text := "wired"
	app.Todos.Add(ctx, todo.Input{Text: &text})
	assert.Equal(t, 1, store.SetCalls)

	value, ok := store.Value(todo.StorageKey("mock-user-1"))
	require.True(t, ok)
	assert.Contains(t, value, "wired")
}

func TestBuildDurableStore_FileBackend(t *testing.T) {
	handle, err := BuildDurableStore(context.Background(), StoreBuildConfig{
		Store: config.StoreConfig{
			Backend: config.StoreBackendFile,
			File:    config.FileStoreConfig{Dir: t.TempDir()},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })

	require.NoError(t, handle.Store.Set(context.Background(), "todoes_x", "[]"))
	value, err := handle.Store.Get(context.Background(), "todoes_x")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestBuildDurableStore_UnsupportedBackend(t *testing.T) {
	_, err := BuildDurableStore(context.Background(), StoreBuildConfig{
		Store: config.StoreConfig{Backend: config.StoreBackend("s3")},
	})
	require.Error(t, err)
}
