package account

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func newTestHandler(t *testing.T) (*Handler, *testEnv, *fakeSessions) {
	t.Helper()
	env := newTestEnv(t)
	sessions := newFakeSessions()
	h := NewHandler(env.svc, slog.New(slog.NewTextHandler(io.Discard, nil)), sessions)
	return h, env, sessions
}

func TestCheckHandlerAnonymous(t *testing.T) {
	h, _, _ := newTestHandler(t)
	ctx := context.Background()

	for _, header := range []string{"", "Bearer ", "Bearer not-a-session", "Basic abc"} {
		resp, err := h.CheckHandler(ctx, &CheckRequest{Authorization: header})
		if err != nil {
			t.Fatalf("check with header %q returned error: %v", header, err)
		}
		if resp.Body.Authenticated {
			t.Fatalf("check with header %q reported authenticated", header)
		}
		if resp.Body.User != nil {
			t.Fatalf("check with header %q leaked a user", header)
		}
	}
}

func TestCheckHandlerValidSession(t *testing.T) {
	h, env, sessions := newTestHandler(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "alice@example.com", "a strong password")

	token, err := sessions.CreateAuthSession(ctx, acct.ID, false, "", "")
	if err != nil {
		t.Fatal(err)
	}

	resp, err := h.CheckHandler(ctx, &CheckRequest{Authorization: "Bearer " + token})
	if err != nil {
		t.Fatalf("CheckHandler: %v", err)
	}
	if !resp.Body.Authenticated {
		t.Fatal("valid session not recognized")
	}
	if resp.Body.User == nil || resp.Body.User.ID != acct.ID {
		t.Fatalf("wrong user in check response: %+v", resp.Body.User)
	}

	// The check must be read-only: no sliding-TTL extension.
	if sessions.extendCalls != 0 {
		t.Fatalf("auth check extended the session %d times", sessions.extendCalls)
	}
}

func TestCheckHandlerGatedAccountStates(t *testing.T) {
	h, env, sessions := newTestHandler(t)
	ctx := context.Background()

	suspended := env.addPasswordAccount(t, "sue@example.com", "a strong password")
	if err := env.repo.SetSuspended(ctx, suspended.ID, true); err != nil {
		t.Fatal(err)
	}
	inactive := env.addPasswordAccount(t, "ivy@example.com", "a strong password")
	if err := env.repo.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{suspended.ID, inactive.ID} {
		token, err := sessions.CreateAuthSession(ctx, id, false, "", "")
		if err != nil {
			t.Fatal(err)
		}
		resp, err := h.CheckHandler(ctx, &CheckRequest{Authorization: "Bearer " + token})
		if err != nil {
			t.Fatalf("CheckHandler: %v", err)
		}
		if resp.Body.Authenticated || resp.Body.User != nil {
			t.Fatalf("gated account %s reported authenticated", id)
		}
	}
}

func TestCheckHandlerDeletedSession(t *testing.T) {
	h, env, sessions := newTestHandler(t)
	ctx := context.Background()
	acct := env.addPasswordAccount(t, "alice@example.com", "a strong password")

	token, err := sessions.CreateAuthSession(ctx, acct.ID, false, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := sessions.Delete(ctx, token); err != nil {
		t.Fatal(err)
	}

	resp, err := h.CheckHandler(ctx, &CheckRequest{Authorization: "Bearer " + token})
	if err != nil {
		t.Fatalf("CheckHandler: %v", err)
	}
	if resp.Body.Authenticated {
		t.Fatal("deleted session still recognized")
	}
}
