package devid

import (
	"context"
	"testing"

	apperrors "github.com/target/todo-sync/internal/errors"
	"github.com/target/todo-sync/internal/ports"
)

func TestProvider_SeededAccountLoginFlow(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Name: "Dev", Email: "dev@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	ctx := context.Background()
	if _, err := prov.CurrentUser(ctx); !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized before login, got %v", err)
	}

	if err := prov.Login(ctx, ports.LoginInput{Email: "Dev@Example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	user, err := prov.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}
	if user.ID != "dev-user" || user.Email != "dev@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if err := prov.Logout(ctx); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, err := prov.CurrentUser(ctx); !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestProvider_LoginFailures(t *testing.T) {
	prov, err := NewProvider(Config{Email: "dev@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	ctx := context.Background()
	if err := prov.Login(ctx, ports.LoginInput{Email: "nobody@example.com", Password: "x"}); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found for unknown account, got %v", err)
	}
	if err := prov.Login(ctx, ports.LoginInput{Email: "dev@example.com", Password: "wrong"}); !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}
}

func TestProvider_Signup(t *testing.T) {
	prov, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	ctx := context.Background()
	user, err := prov.Signup(ctx, ports.SignupInput{Name: "New", Email: "new@example.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("signup must issue a stable user ID")
	}

	if _, err := prov.Signup(ctx, ports.SignupInput{Email: "NEW@example.com", Password: "other"}); !apperrors.IsConflict(err) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
	if _, err := prov.Signup(ctx, ports.SignupInput{Password: "pw"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}

	if err := prov.Login(ctx, ports.LoginInput{Email: "new@example.com", Password: "pw123456"}); err != nil {
		t.Fatalf("Login after signup error: %v", err)
	}
	got, err := prov.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("session user %q does not match signed-up user %q", got.ID, user.ID)
	}
}

func TestNewProvider_SeedRequiresPassword(t *testing.T) {
	if _, err := NewProvider(Config{Email: "dev@example.com"}); err == nil {
		t.Fatal("expected error when seeding without a password")
	}
}
