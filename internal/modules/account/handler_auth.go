package account

import (
	"context"
	"strings"

	"github.com/gatherly-app/gatherly-api/internal/httpx"
	"github.com/gatherly-app/gatherly-api/internal/validation"
)

// --- DTOs ---

// AccountBody is the public representation of an account.
type AccountBody struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	Active            bool     `json:"active"`
	Suspended         bool     `json:"suspended"`
	AuthProvider      string   `json:"authProvider"`
	PasswordSetByUser bool     `json:"passwordSetByUser"`
	Permissions       []string `json:"permissions,omitempty"`
}

// RegisterRequest defines the structure for the account registration request body.
type RegisterRequest struct {
	Body struct {
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=8"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	}
}

// RegisterResponse defines the structure for a successful registration response.
type RegisterResponse struct {
	Body AccountBody
}

// LoginRequest defines the structure for the login request body.
type LoginRequest struct {
	UserAgent string `header:"User-Agent"`
	Body      struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Remember bool   `json:"remember,omitempty"`
	}
}

// LoginResponse defines the structure for a successful login response. When
// the credentials are valid but the account is inactive, no session is
// created and NeedsReactivation directs the client to the reactivation flow.
type LoginResponse struct {
	Body struct {
		Success           bool         `json:"success"`
		Token             string       `json:"token,omitempty"`
		User              *AccountBody `json:"user,omitempty"`
		NeedsReactivation bool         `json:"needsReactivation,omitempty"`
		Message           string       `json:"message,omitempty"`
	}
}

// LogoutRequest carries the bearer session token being terminated.
type LogoutRequest struct {
	Authorization string `header:"Authorization"`
}

// LogoutResponse is an empty 204 response.
type LogoutResponse struct{}

// CheckRequest carries the optional bearer session token to check.
type CheckRequest struct {
	Authorization string `header:"Authorization"`
}

// CheckResponse reports whether the presented session is valid; User is only
// set when it is.
type CheckResponse struct {
	Body struct {
		Authenticated bool         `json:"authenticated"`
		User          *AccountBody `json:"user,omitempty"`
	}
}

func toAccountBody(acct *Account, permissions []string) AccountBody {
	return AccountBody{
		ID:                acct.ID,
		Email:             acct.Email,
		Active:            acct.Active,
		Suspended:         acct.Suspended,
		AuthProvider:      string(acct.AuthProvider),
		PasswordSetByUser: acct.PasswordSetByUser,
		Permissions:       permissions,
	}
}

// --- Handlers ---

// RegisterHandler handles the account registration endpoint.
func (h *Handler) RegisterHandler(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	acct, err := h.service.Register(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		h.logger.Warn("registration failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	return &RegisterResponse{Body: toAccountBody(acct, nil)}, nil
}

// LoginHandler handles the login endpoint. A successful credential check on an
// active account creates an opaque session; an inactive account gets a
// needs-reactivation signal and no session.
func (h *Handler) LoginHandler(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	result, err := h.service.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		h.logger.Warn("login attempt failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &LoginResponse{}
	if result.NeedsReactivation {
		resp.Body.NeedsReactivation = true
		resp.Body.Message = "Account is inactive. Request a reactivation code to continue."
		return resp, nil
	}

	sessionID, err := h.sessions.CreateAuthSession(ctx, result.Account.ID, input.Body.Remember, input.UserAgent, "")
	if err != nil {
		h.logger.Error("failed to create auth session", "error", err, "account_id", result.Account.ID)
		return nil, httpx.InternalProblem(ctx, "")
	}

	user := toAccountBody(result.Account, nil)
	resp.Body.Success = true
	resp.Body.Token = sessionID
	resp.Body.User = &user
	return resp, nil
}

// LogoutHandler terminates the presented session. It is idempotent: a missing
// or already-deleted session still yields 204.
func (h *Handler) LogoutHandler(ctx context.Context, input *LogoutRequest) (*LogoutResponse, error) {
	token, found := strings.CutPrefix(input.Authorization, "Bearer ")
	if !found || token == "" {
		return &LogoutResponse{}, nil
	}

	if err := h.sessions.Delete(ctx, token); err != nil {
		h.logger.Error("failed to delete session", "error", err)
		return nil, httpx.InternalProblem(ctx, "")
	}
	return &LogoutResponse{}, nil
}

// CheckHandler resolves the presented session read-only and answers 200 in
// every case. A missing, invalid, or expired session, or one belonging to a
// suspended or inactive account, yields authenticated=false rather than an
// error. The sliding TTL is not touched.
func (h *Handler) CheckHandler(ctx context.Context, input *CheckRequest) (*CheckResponse, error) {
	resp := &CheckResponse{}

	token, found := strings.CutPrefix(input.Authorization, "Bearer ")
	if !found || !strings.HasPrefix(token, "auth:") {
		return resp, nil
	}

	accountID, err := h.sessions.Get(ctx, token)
	if err != nil {
		return resp, nil
	}

	principal, err := h.service.ResolvePrincipal(ctx, accountID)
	if err != nil {
		return resp, nil
	}
	if principal.Account.Suspended || !principal.Account.Active {
		return resp, nil
	}

	user := toAccountBody(principal.Account, principal.PermissionKeys())
	resp.Body.Authenticated = true
	resp.Body.User = &user
	return resp, nil
}
