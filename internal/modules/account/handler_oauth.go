package account

import (
	"context"

	"github.com/gatherly-app/gatherly-api/internal/httpx"
)

// --- DTOs ---

// OAuthLoginResponse returns the provider redirect URL for the client to follow.
type OAuthLoginResponse struct {
	Body struct {
		RedirectURL string `json:"redirectUrl"`
	}
}

// OAuthCallbackRequest defines the query parameters forwarded from the provider.
type OAuthCallbackRequest struct {
	UserAgent string `header:"User-Agent"`
	Code      string `query:"code"`
	State     string `query:"state"`
}

// OAuthCallbackResponse mirrors the login response shape.
type OAuthCallbackResponse struct {
	Body struct {
		Token             string `json:"token,omitempty"`
		NeedsReactivation bool   `json:"needsReactivation,omitempty"`
		Message           string `json:"message,omitempty"`
	}
}

// --- Handlers ---

// OAuthLoginHandler initiates the Google OAuth flow by returning a redirect URL.
func (h *Handler) OAuthLoginHandler(ctx context.Context, _ *struct{}) (*OAuthLoginResponse, error) {
	redirectURL, err := h.service.InitiateOAuthLogin(ctx)
	if err != nil {
		h.logger.Error("failed to initiate oauth login", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OAuthLoginResponse{}
	resp.Body.RedirectURL = redirectURL
	return resp, nil
}

// OAuthCallbackHandler completes the handshake and establishes a session,
// applying the same state gating as the password login.
func (h *Handler) OAuthCallbackHandler(ctx context.Context, input *OAuthCallbackRequest) (*OAuthCallbackResponse, error) {
	result, err := h.service.HandleOAuthCallback(ctx, input.State, input.Code)
	if err != nil {
		h.logger.Warn("oauth callback processing failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OAuthCallbackResponse{}
	if result.NeedsReactivation {
		resp.Body.NeedsReactivation = true
		resp.Body.Message = "Account is inactive. Request a reactivation code to continue."
		return resp, nil
	}

	sessionID, err := h.sessions.CreateAuthSession(ctx, result.Account.ID, false, input.UserAgent, "")
	if err != nil {
		h.logger.Error("failed to create auth session after oauth login", "error", err, "account_id", result.Account.ID)
		return nil, httpx.InternalProblem(ctx, "")
	}

	resp.Body.Token = sessionID
	return resp, nil
}
