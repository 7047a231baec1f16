package account

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherly-app/gatherly-api/internal/session"
)

// Handler holds the dependencies for the account module's HTTP handlers.
type Handler struct {
	service  Service
	sessions session.Provider
	logger   *slog.Logger
}

// NewHandler creates a new handler for the account module.
func NewHandler(service Service, logger *slog.Logger, sessions session.Provider) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes sets up the routing for the account module.
//
// authn is the session-resolving gate applied to protected routes; admin
// additionally requires the admin_access permission.
func (h *Handler) RegisterRoutes(api huma.API, authn, admin func(ctx huma.Context, next func(huma.Context))) {
	// --- Authentication Routes ---
	huma.Register(api, huma.Operation{
		OperationID: "auth-register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new account",
	}, h.RegisterHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in with email and password",
	}, h.LoginHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "Log out the current session",
		DefaultStatus: http.StatusNoContent,
	}, h.LogoutHandler)

	// auth-check stays outside the session gate: it always answers 200 with
	// an authenticated flag and never rejects or mutates.
	huma.Register(api, huma.Operation{
		OperationID: "auth-check",
		Method:      http.MethodGet,
		Path:        "/auth/check",
		Summary:     "Report whether the caller holds a valid session",
	}, h.CheckHandler)

	// --- Reactivation Routes ---
	huma.Register(api, huma.Operation{
		OperationID: "reactivation-send-code",
		Method:      http.MethodPost,
		Path:        "/reactivation/send-code",
		Summary:     "Send a reactivation code to an inactive account",
	}, h.SendReactivationCodeHandler)

	huma.Register(api, huma.Operation{
		OperationID: "reactivation-verify-code",
		Method:      http.MethodPost,
		Path:        "/reactivation/verify-code",
		Summary:     "Verify a reactivation code and reactivate the account",
	}, h.VerifyReactivationCodeHandler)

	// --- Password Reset Routes ---
	huma.Register(api, huma.Operation{
		OperationID: "password-reset-send-code",
		Method:      http.MethodPost,
		Path:        "/password-reset/send-code",
		Summary:     "Send a password reset code",
	}, h.SendPasswordResetCodeHandler)

	huma.Register(api, huma.Operation{
		OperationID: "password-reset-reset",
		Method:      http.MethodPost,
		Path:        "/password-reset/reset-password",
		Summary:     "Reset the password with a verification code",
	}, h.ResetPasswordHandler)

	// --- Account State Routes ---
	huma.Register(api, huma.Operation{
		OperationID: "accounts-me",
		Method:      http.MethodGet,
		Path:        "/accounts/me",
		Summary:     "Get the current account",
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{authn},
	}, h.MeHandler)

	huma.Register(api, huma.Operation{
		OperationID: "accounts-deactivate",
		Method:      http.MethodPost,
		Path:        "/accounts/deactivate",
		Summary:     "Deactivate the current account",
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{authn},
	}, h.DeactivateHandler)

	huma.Register(api, huma.Operation{
		OperationID: "accounts-initial-password",
		Method:      http.MethodPost,
		Path:        "/accounts/password/initial",
		Summary:     "Set the initial password for an OAuth-provisioned account",
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{authn},
	}, h.SetInitialPasswordHandler)

	huma.Register(api, huma.Operation{
		OperationID: "accounts-suspend",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/suspend",
		Summary:     "Suspend an account (admin)",
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{authn, admin},
	}, h.SuspendHandler)

	huma.Register(api, huma.Operation{
		OperationID: "accounts-unsuspend",
		Method:      http.MethodPost,
		Path:        "/accounts/{id}/unsuspend",
		Summary:     "Lift an account suspension (admin)",
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{authn, admin},
	}, h.UnsuspendHandler)

	// --- OAuth Routes ---
	huma.Register(api, huma.Operation{
		OperationID: "oauth-google",
		Method:      http.MethodGet,
		Path:        "/auth/oauth/google",
		Summary:     "Initiate Google OAuth login",
	}, h.OAuthLoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "oauth-google-callback",
		Method:      http.MethodGet,
		Path:        "/auth/oauth/google/callback",
		Summary:     "Handle the Google OAuth callback",
	}, h.OAuthCallbackHandler)
}
