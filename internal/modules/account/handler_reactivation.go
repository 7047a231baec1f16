package account

import (
	"context"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/httpx"
	"github.com/gatherly-app/gatherly-api/internal/validation"
)

// --- DTOs ---

// SendReactivationCodeRequest identifies the inactive account by email.
type SendReactivationCodeRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
	}
}

// SendReactivationCodeResponse confirms dispatch without revealing the code.
// RemainingAttempts is the full ceiling for the freshly issued code.
type SendReactivationCodeResponse struct {
	Body struct {
		Success           bool      `json:"success"`
		Message           string    `json:"message"`
		ExpiresAt         time.Time `json:"expiresAt"`
		RemainingAttempts int       `json:"remainingAttempts"`
	}
}

// VerifyReactivationCodeRequest carries the submitted 6-digit code.
type VerifyReactivationCodeRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6,numeric"`
	}
}

// VerifyReactivationCodeResponse confirms the account is active again.
type VerifyReactivationCodeResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

// --- Handlers ---

// SendReactivationCodeHandler issues a reactivation code for an inactive account.
func (h *Handler) SendReactivationCodeHandler(ctx context.Context, input *SendReactivationCodeRequest) (*SendReactivationCodeResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	issued, err := h.service.SendReactivationCode(ctx, input.Body.Email)
	if err != nil {
		h.logger.Warn("send reactivation code failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SendReactivationCodeResponse{}
	resp.Body.Success = true
	resp.Body.Message = "A reactivation code has been sent to your email."
	resp.Body.ExpiresAt = issued.ExpiresAt
	resp.Body.RemainingAttempts = issued.MaxAttempts
	return resp, nil
}

// VerifyReactivationCodeHandler consumes a reactivation code and flips the
// account back to active.
func (h *Handler) VerifyReactivationCodeHandler(ctx context.Context, input *VerifyReactivationCodeRequest) (*VerifyReactivationCodeResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	if err := h.service.VerifyReactivationCode(ctx, input.Body.Email, input.Body.Code); err != nil {
		h.logger.Warn("verify reactivation code failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &VerifyReactivationCodeResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Your account has been reactivated. You can now log in."
	return resp, nil
}
