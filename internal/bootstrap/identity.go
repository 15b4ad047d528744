package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/target/todo-sync/config"
	"github.com/target/todo-sync/internal/adapters/devid"
	"github.com/target/todo-sync/internal/adapters/oidcid"
	"github.com/target/todo-sync/internal/adapters/restid"
	"github.com/target/todo-sync/internal/ports"
)

// IdentityBuildConfig contains configuration for the identity provider.
type IdentityBuildConfig struct {
	Identity config.IdentityConfig
	Logger   *slog.Logger
}

// BuildIdentityProvider creates an identity provider based on the
// configured identity mode.
//
//nolint:ireturn // the provider implementation is selected at runtime.
func BuildIdentityProvider(cfg IdentityBuildConfig) (ports.IdentityProvider, error) {
	switch cfg.Identity.Mode {
	case config.IdentityModeMock:
		return buildDevProvider(cfg)
	case config.IdentityModeREST:
		return buildRESTProvider(cfg)
	case config.IdentityModeOIDC:
		return buildOIDCProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", cfg.Identity.Mode)
	}
}

func buildDevProvider(cfg IdentityBuildConfig) (*devid.Provider, error) {
	dev := cfg.Identity.Dev
	prov, err := devid.NewProvider(devid.Config{
		UserID:   dev.UserID,
		Name:     dev.Name,
		Email:    dev.Email,
		Password: dev.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create dev identity provider: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("using mock identity provider; not for production", "user_id", dev.UserID)
	}
	return prov, nil
}

func buildRESTProvider(cfg IdentityBuildConfig) (*restid.Client, error) {
	rest := cfg.Identity.REST
	if rest.BaseURL == "" {
		return nil, fmt.Errorf("IdentityModeREST selected but IDENTITY_REST_BASE_URL is not set")
	}

	client, err := restid.NewClient(restid.Config{
		BaseURL:   rest.BaseURL,
		ProjectID: rest.ProjectID,
		Claims: restid.ClaimConfig{
			UserID: rest.UserIDClaim,
			Name:   rest.NameClaim,
			Email:  rest.EmailClaim,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create rest identity client: %w", err)
	}
	return client, nil
}

func buildOIDCProvider(cfg IdentityBuildConfig) (*oidcid.Provider, error) {
	oidc := cfg.Identity.OIDC
	if oidc.DiscoveryURL == "" || oidc.ClientID == "" {
		return nil, fmt.Errorf("IdentityModeOIDC selected but discovery URL or client ID is missing")
	}

	prov, err := oidcid.NewProvider(oidcid.ProviderConfig{
		ClientID:     oidc.ClientID,
		ClientSecret: oidc.ClientSecret,
		Scope:        oidc.Scope,
		DiscoveryURL: oidc.DiscoveryURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create oidc identity provider: %w", err)
	}
	return prov, nil
}
