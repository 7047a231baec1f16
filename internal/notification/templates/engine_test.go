package templates

import (
	"context"
	"strings"
	"testing"
)

func TestRenderReactivationCode(t *testing.T) {
	e := NewEngine()
	out, err := Render(context.Background(), e, ReactivationCode, ReactivationCodeData{
		Email:        "dana@example.com",
		Code:         "123456",
		ExpiresAt:    "12:15 UTC, Jun 1",
		SupportEmail: "support@gatherly.test",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Subject == "" {
		t.Fatal("empty subject")
	}
	if !strings.Contains(out.EmailText, "123456") {
		t.Fatal("code missing from text body")
	}
	if !strings.Contains(out.EmailHTML, "123456") {
		t.Fatal("code missing from html body")
	}
}

func TestRenderPasswordResetCode(t *testing.T) {
	e := NewEngine()
	out, err := Render(context.Background(), e, PasswordResetCode, PasswordResetCodeData{
		Email:        "erin@example.com",
		Code:         "654321",
		ExpiresAt:    "12:15 UTC, Jun 1",
		SupportEmail: "support@gatherly.test",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.EmailText, "654321") {
		t.Fatal("code missing from text body")
	}
}

func TestRenderDeactivatedNotice(t *testing.T) {
	e := NewEngine()
	out, err := Render(context.Background(), e, Deactivated, DeactivatedData{
		Email:        "bob@example.com",
		SupportEmail: "support@gatherly.test",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Subject == "" || out.EmailText == "" || out.EmailHTML == "" {
		t.Fatalf("incomplete render: %+v", out)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	e := NewEngine()
	if _, err := e.RenderAny(context.Background(), "account.nonexistent", nil); err == nil {
		t.Fatal("expected error for unknown template id")
	}
}
