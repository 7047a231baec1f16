package account

import (
	"context"
	"errors"
	"testing"
)

func TestDeactivateRequiresConfirmationPhrase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "bob@example.com", "a strong password")

	err := env.svc.Deactivate(ctx, acct.ID, "deactivate-bob2")
	if !errors.Is(err, ErrConfirmationMismatch) {
		t.Fatalf("expected ErrConfirmationMismatch, got %v", err)
	}
	stored, _ := env.repo.FindByID(ctx, acct.ID)
	if !stored.Active {
		t.Fatal("mismatched confirmation changed account state")
	}

	if err := env.svc.Deactivate(ctx, acct.ID, "deactivate-bob"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	stored, _ = env.repo.FindByID(ctx, acct.ID)
	if stored.Active {
		t.Fatal("account still active after deactivation")
	}
}

func TestDeactivateAlreadyInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "bob@example.com", "a strong password")
	if err := env.repo.SetActive(ctx, acct.ID, false); err != nil {
		t.Fatal(err)
	}

	err := env.svc.Deactivate(ctx, acct.ID, "deactivate-bob")
	if !errors.Is(err, ErrAlreadyInactive) {
		t.Fatalf("expected ErrAlreadyInactive, got %v", err)
	}
}

func TestReactivationRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "bob@example.com", "a strong password")

	if err := env.svc.Deactivate(ctx, acct.ID, "deactivate-bob"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	issued, err := env.svc.SendReactivationCode(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("SendReactivationCode: %v", err)
	}
	if err := env.svc.VerifyReactivationCode(ctx, "bob@example.com", issued.Code); err != nil {
		t.Fatalf("VerifyReactivationCode: %v", err)
	}

	result, err := env.svc.Login(ctx, "bob@example.com", "a strong password")
	if err != nil {
		t.Fatalf("Login after reactivation: %v", err)
	}
	if result.NeedsReactivation {
		t.Fatal("account still flagged for reactivation")
	}
}

func TestSendReactivationCodeGating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "bob@example.com", "a strong password")

	// Active accounts have nothing to reactivate.
	if _, err := env.svc.SendReactivationCode(ctx, "bob@example.com"); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}

	// A suspended account cannot reactivate itself, active or not.
	if err := env.repo.SetActive(ctx, acct.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := env.repo.SetSuspended(ctx, acct.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.SendReactivationCode(ctx, "bob@example.com"); !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
}

func TestSetInitialPasswordIsOneShot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.repo.addAccount(&Account{
		Email:             "carol@example.com",
		Active:            true,
		AuthProvider:      AuthProviderOAuth,
		PasswordSetByUser: false,
		CreatedAt:         env.clock.Now(),
	})

	if err := env.svc.SetInitialPassword(ctx, acct.ID, "a strong password"); err != nil {
		t.Fatalf("SetInitialPassword: %v", err)
	}

	result, err := env.svc.Login(ctx, "carol@example.com", "a strong password")
	if err != nil {
		t.Fatalf("Login with initial password: %v", err)
	}
	if result.NeedsReactivation {
		t.Fatal("unexpected reactivation flag")
	}

	err = env.svc.SetInitialPassword(ctx, acct.ID, "another password")
	if !errors.Is(err, ErrPasswordAlreadySet) {
		t.Fatalf("expected ErrPasswordAlreadySet, got %v", err)
	}
}

func TestUnsuspendRestoresPriorActiveValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "bob@example.com", "a strong password")
	if err := env.repo.SetActive(ctx, acct.ID, false); err != nil {
		t.Fatal(err)
	}

	if err := env.svc.Suspend(ctx, acct.ID); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := env.svc.Unsuspend(ctx, acct.ID); err != nil {
		t.Fatalf("Unsuspend: %v", err)
	}

	stored, _ := env.repo.FindByID(ctx, acct.ID)
	if stored.Suspended {
		t.Fatal("account still suspended")
	}
	if stored.Active {
		t.Fatal("unsuspension must not resurrect an inactive account")
	}
}

func TestResetPasswordFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addPasswordAccount(t, "erin@example.com", "old password 123")

	issued, err := env.svc.SendPasswordResetCode(ctx, "erin@example.com")
	if err != nil {
		t.Fatalf("SendPasswordResetCode: %v", err)
	}
	if err := env.svc.ResetPassword(ctx, "erin@example.com", issued.Code, "new password 456"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, err := env.svc.Login(ctx, "erin@example.com", "old password 123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := env.svc.Login(ctx, "erin@example.com", "new password 456"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
