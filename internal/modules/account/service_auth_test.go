package account

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acct, err := env.svc.Register(ctx, "Alice@Example.com", "a strong password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acct.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", acct.Email)
	}
	if !acct.Active || acct.Suspended {
		t.Fatalf("new account flags wrong: active=%v suspended=%v", acct.Active, acct.Suspended)
	}
	if acct.AuthProvider != AuthProviderPassword || !acct.PasswordSetByUser {
		t.Fatalf("provisioning flags wrong: provider=%s passwordSet=%v", acct.AuthProvider, acct.PasswordSetByUser)
	}

	result, err := env.svc.Login(ctx, "alice@example.com", "a strong password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.NeedsReactivation {
		t.Fatal("active account flagged for reactivation")
	}

	stored, err := env.repo.FindByID(ctx, acct.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.LastLoginAt == nil {
		t.Fatal("last login not recorded")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Register(ctx, "alice@example.com", "a strong password"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := env.svc.Register(ctx, "ALICE@example.com", "another password")
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addPasswordAccount(t, "alice@example.com", "a strong password")

	_, err := env.svc.Login(ctx, "alice@example.com", "wrong password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}

	// Unknown email yields the same error so callers cannot enumerate accounts.
	_, err = env.svc.Login(ctx, "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginSuspendedTakesPrecedence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "alice@example.com", "a strong password")

	// Suspended and inactive at once: suspension must win.
	if err := env.repo.SetActive(ctx, acct.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := env.repo.SetSuspended(ctx, acct.ID, true); err != nil {
		t.Fatal(err)
	}

	_, err := env.svc.Login(ctx, "alice@example.com", "a strong password")
	if !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
}

func TestLoginInactiveSignalsReactivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "alice@example.com", "a strong password")
	if err := env.repo.SetActive(ctx, acct.ID, false); err != nil {
		t.Fatal(err)
	}

	result, err := env.svc.Login(ctx, "alice@example.com", "a strong password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !result.NeedsReactivation {
		t.Fatal("inactive account not flagged for reactivation")
	}

	// An inactive login must not count as activity.
	stored, err := env.repo.FindByID(ctx, acct.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.LastLoginAt != nil {
		t.Fatal("last login recorded for inactive account")
	}
}
