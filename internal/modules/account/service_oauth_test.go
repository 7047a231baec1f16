package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestOAuthStateSignedRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	s := env.svc.(*service)

	expiresAt := env.clock.Now().Add(oauthStateTTL)
	signed, err := s.signOAuthState("state-id-123", expiresAt)
	if err != nil {
		t.Fatalf("signOAuthState: %v", err)
	}

	id, err := s.parseOAuthState(signed)
	if err != nil {
		t.Fatalf("parseOAuthState: %v", err)
	}
	if id != "state-id-123" {
		t.Fatalf("parsed state id = %q, want state-id-123", id)
	}
}

func TestOAuthStateRejectsTampering(t *testing.T) {
	env := newTestEnv(t)
	s := env.svc.(*service)

	signed, err := s.signOAuthState("state-id-123", env.clock.Now().Add(oauthStateTTL))
	if err != nil {
		t.Fatal(err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := s.parseOAuthState(tampered); err == nil {
		t.Fatal("tampered state token accepted")
	}
}

func TestOAuthStateRejectsExpiry(t *testing.T) {
	env := newTestEnv(t)
	s := env.svc.(*service)

	signed, err := s.signOAuthState("state-id-123", env.clock.Now().Add(oauthStateTTL))
	if err != nil {
		t.Fatal(err)
	}

	env.clock.Advance(oauthStateTTL + time.Minute)
	if _, err := s.parseOAuthState(signed); err == nil {
		t.Fatal("expired state token accepted")
	}
}

func TestInitiateOAuthLoginPersistsHandshake(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	redirectURL, err := env.svc.InitiateOAuthLogin(ctx)
	if err != nil {
		t.Fatalf("InitiateOAuthLogin: %v", err)
	}
	if !strings.Contains(redirectURL, "state=") {
		t.Fatalf("redirect URL missing state parameter: %s", redirectURL)
	}
	if !strings.Contains(redirectURL, "code_challenge=") {
		t.Fatalf("redirect URL missing PKCE challenge: %s", redirectURL)
	}

	env.repo.mu.Lock()
	stored := len(env.repo.states)
	env.repo.mu.Unlock()
	if stored != 1 {
		t.Fatalf("stored %d oauth states, want 1", stored)
	}
}

func TestHandleOAuthCallbackInvalidState(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.HandleOAuthCallback(context.Background(), "not-a-signed-state", "some-code")
	if !errors.Is(err, ErrOAuthStateInvalid) {
		t.Fatalf("expected ErrOAuthStateInvalid, got %v", err)
	}
}
