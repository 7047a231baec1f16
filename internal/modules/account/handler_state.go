package account

import (
	"context"

	"github.com/gatherly-app/gatherly-api/internal/contextx"
	"github.com/gatherly-app/gatherly-api/internal/httpx"
	"github.com/gatherly-app/gatherly-api/internal/validation"
)

// --- DTOs ---

// DeactivateRequest carries the typed confirmation phrase
// ("deactivate-<email local part>").
type DeactivateRequest struct {
	Body struct {
		Confirmation string `json:"confirmation" validate:"required"`
	}
}

// DeactivateResponse confirms the deactivation.
type DeactivateResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

// SetInitialPasswordRequest carries the first self-chosen password for an
// OAuth-provisioned account.
type SetInitialPasswordRequest struct {
	Body struct {
		Password        string `json:"password" validate:"required,min=8"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	}
}

// SetInitialPasswordResponse confirms the password was set.
type SetInitialPasswordResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

// SuspendRequest targets an account by path ID.
type SuspendRequest struct {
	ID string `path:"id" validate:"required,uuid"`
}

// SuspendResponse confirms the suspension change.
type SuspendResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// MeResponse returns the current account.
type MeResponse struct {
	Body AccountBody
}

func principalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextx.PrincipalKey).(*Principal)
	return p, ok
}

// --- Handlers ---

// MeHandler returns the authenticated caller's account and permissions.
func (h *Handler) MeHandler(ctx context.Context, _ *struct{}) (*MeResponse, error) {
	principal, ok := principalFrom(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}
	return &MeResponse{Body: toAccountBody(principal.Account, principal.PermissionKeys())}, nil
}

// DeactivateHandler performs self-service deactivation for the caller and
// terminates the session used to call it.
func (h *Handler) DeactivateHandler(ctx context.Context, input *DeactivateRequest) (*DeactivateResponse, error) {
	principal, ok := principalFrom(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	if err := h.service.Deactivate(ctx, principal.Account.ID, input.Body.Confirmation); err != nil {
		h.logger.Warn("deactivation failed", "account_id", principal.Account.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	// A deactivated account must not keep a live session.
	if sessionID, ok := ctx.Value(contextx.SessionIDKey).(string); ok && sessionID != "" {
		if err := h.sessions.Delete(ctx, sessionID); err != nil {
			h.logger.Error("failed to delete session after deactivation", "error", err)
		}
	}

	resp := &DeactivateResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Your account has been deactivated. Use the reactivation flow to restore access."
	return resp, nil
}

// SetInitialPasswordHandler completes the one-time password setup for an
// OAuth-provisioned account.
func (h *Handler) SetInitialPasswordHandler(ctx context.Context, input *SetInitialPasswordRequest) (*SetInitialPasswordResponse, error) {
	principal, ok := principalFrom(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	if err := h.service.SetInitialPassword(ctx, principal.Account.ID, input.Body.Password); err != nil {
		h.logger.Warn("set initial password failed", "account_id", principal.Account.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SetInitialPasswordResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Your password has been set. You can now log in with email and password."
	return resp, nil
}

// SuspendHandler imposes the administrative suspension overlay on an account.
func (h *Handler) SuspendHandler(ctx context.Context, input *SuspendRequest) (*SuspendResponse, error) {
	if verr := validation.ValidateStruct(input); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	if err := h.service.Suspend(ctx, input.ID); err != nil {
		h.logger.Warn("suspend failed", "account_id", input.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SuspendResponse{}
	resp.Body.Success = true
	return resp, nil
}

// UnsuspendHandler lifts the suspension overlay; the account's underlying
// active value is untouched.
func (h *Handler) UnsuspendHandler(ctx context.Context, input *SuspendRequest) (*SuspendResponse, error) {
	if verr := validation.ValidateStruct(input); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	if err := h.service.Unsuspend(ctx, input.ID); err != nil {
		h.logger.Warn("unsuspend failed", "account_id", input.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SuspendResponse{}
	resp.Body.Success = true
	return resp, nil
}
