package config

import (
	"fmt"
	"strings"
)

// IdentityMode represents the identity provider the client talks to.
type IdentityMode string

const (
	// IdentityModeREST uses a hosted REST identity service.
	IdentityModeREST IdentityMode = "rest"
	// IdentityModeOIDC uses an OIDC issuer with the password grant.
	IdentityModeOIDC IdentityMode = "oidc"
	// IdentityModeMock uses an in-memory identity provider (for development only).
	IdentityModeMock IdentityMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for IdentityMode.
func (m *IdentityMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "rest", "oidc", "mock":
		*m = IdentityMode(v)
		return nil
	default:
		return fmt.Errorf("invalid IdentityMode: %q (valid options: rest, oidc, mock)", v)
	}
}

// RESTIdentityConfig contains hosted REST identity service configuration.
type RESTIdentityConfig struct {
	BaseURL   string `env:"BASE_URL"`
	ProjectID string `env:"PROJECT_ID"`

	// JMESPath expressions selecting fields from the account payload.
	UserIDClaim string `env:"USER_ID_CLAIM"`
	NameClaim   string `env:"NAME_CLAIM"`
	EmailClaim  string `env:"EMAIL_CLAIM"`
}

// OIDCIdentityConfig contains OIDC issuer configuration.
type OIDCIdentityConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"todo-sync"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevIdentityConfig controls the mock identity provider's seeded account.
// Used when IDENTITY_MODE=mock for development and testing.
type DevIdentityConfig struct {
	UserID   string `env:"USER_ID"  envDefault:"dev-user"`
	Name     string `env:"NAME"     envDefault:"Dev User"`
	Email    string `env:"EMAIL"    envDefault:"dev@example.com"`
	Password string `env:"PASSWORD" envDefault:"devpass"`
}

// IdentityConfig groups all identity-related configuration.
type IdentityConfig struct {
	// Mode determines which identity provider to use.
	Mode IdentityMode `env:"IDENTITY_MODE" envDefault:"rest"`

	// REST configuration (used when Mode=rest).
	REST RESTIdentityConfig `envPrefix:"IDENTITY_REST_"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCIdentityConfig `envPrefix:"IDENTITY_OIDC_"`

	// Dev configuration (used when Mode=mock).
	Dev DevIdentityConfig `envPrefix:"DEV_IDENTITY_"`
}
