package account

import (
	"context"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/httpx"
	"github.com/gatherly-app/gatherly-api/internal/validation"
)

// --- DTOs ---

// SendPasswordResetCodeRequest identifies the account by email.
type SendPasswordResetCodeRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
	}
}

// SendPasswordResetCodeResponse confirms dispatch without revealing the code.
type SendPasswordResetCodeResponse struct {
	Body struct {
		Success   bool      `json:"success"`
		Message   string    `json:"message"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
}

// ResetPasswordRequest carries the code and the replacement password.
type ResetPasswordRequest struct {
	Body struct {
		Email           string `json:"email" validate:"required,email"`
		Code            string `json:"code" validate:"required,len=6,numeric"`
		Password        string `json:"password" validate:"required,min=8"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	}
}

// ResetPasswordResponse confirms the password change.
type ResetPasswordResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

// --- Handlers ---

// SendPasswordResetCodeHandler issues a password reset code.
func (h *Handler) SendPasswordResetCodeHandler(ctx context.Context, input *SendPasswordResetCodeRequest) (*SendPasswordResetCodeResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	issued, err := h.service.SendPasswordResetCode(ctx, input.Body.Email)
	if err != nil {
		h.logger.Warn("send password reset code failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SendPasswordResetCodeResponse{}
	resp.Body.Success = true
	resp.Body.Message = "A password reset code has been sent to your email."
	resp.Body.ExpiresAt = issued.ExpiresAt
	return resp, nil
}

// ResetPasswordHandler verifies the code and sets the new password in one step.
func (h *Handler) ResetPasswordHandler(ctx context.Context, input *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	if err := h.service.ResetPassword(ctx, input.Body.Email, input.Body.Code, input.Body.Password); err != nil {
		h.logger.Warn("reset password failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ResetPasswordResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Your password has been reset. You can now log in."
	return resp, nil
}
