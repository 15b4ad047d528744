package auth

// Package auth contains domain-level types for identity and session state.
// It is pure and free of provider/adapter concerns.

// User represents the authenticated principal as resolved from the identity
// provider. Adapters map provider-specific payloads into this shape.
type User struct {
	// ID is the stable unique identifier issued by the provider.
	ID string `json:"id"`
	// Name is an optional display name.
	Name string `json:"name,omitempty"`
	// Email is the address the account was registered with.
	Email string `json:"email"`
}

// DisplayName returns the name when set, otherwise the email address.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// SessionState is the observable authentication state of the application.
// User is nil while unauthenticated or while the resolved user has not yet
// arrived from the provider.
type SessionState struct {
	User *User
	// Loading is true only during the initial session-restore probe. It
	// never re-enters true once the probe resolves.
	Loading bool
}

// Authenticated reports whether a user is resolved. It is always derived
// from User and never stored independently.
func (s SessionState) Authenticated() bool { return s.User != nil }
