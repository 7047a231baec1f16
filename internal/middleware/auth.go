package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gatherly-app/gatherly-api/internal/contextx"
	"github.com/gatherly-app/gatherly-api/internal/httpx"
	"github.com/gatherly-app/gatherly-api/internal/modules/account"
	"github.com/gatherly-app/gatherly-api/internal/session"
)

// writeProblem renders a domain error as an RFC 7807 problem+json response
// from inside a Huma middleware, where returning an error is not an option.
func writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	problem := httpx.ToProblem(r.Context(), err)
	p, ok := problem.(*httpx.Problem)
	if !ok {
		p = httpx.InternalProblem(r.Context(), "")
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.GetStatus())
	_ = json.NewEncoder(w).Encode(p)
}

// SessionAuthHuma is a router-agnostic Huma middleware that validates an opaque
// bearer session token and gates on account state before any handler runs.
//
// The gate order is fixed: missing or invalid session is 401; a suspended
// account is 403 regardless of its active value; an inactive account is 403
// with a needs-reactivation signal. On success the account ID, session ID, and
// resolved principal are injected into the request context.
func SessionAuthHuma(sessions session.Provider, svc account.Service, logger *slog.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, _ := humachi.Unwrap(ctx)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeUnauthenticated(ctx, "missing authorization header")
			return
		}
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			writeUnauthenticated(ctx, "invalid authorization header format")
			return
		}
		if !strings.HasPrefix(token, "auth:") {
			writeUnauthenticated(ctx, "invalid session token")
			return
		}

		accountID, err := sessions.GetAndExtend(r.Context(), token)
		if err != nil {
			logger.Warn("session validation failed", "error", err)
			writeUnauthenticated(ctx, "invalid or expired session")
			return
		}

		principal, err := svc.ResolvePrincipal(r.Context(), accountID)
		if err != nil {
			logger.Error("failed to resolve principal", "error", err, "account_id", accountID)
			writeUnauthenticated(ctx, "invalid or expired session")
			return
		}

		if principal.Account.Suspended {
			r, w := humachi.Unwrap(ctx)
			writeProblem(w, r, account.ErrSuspended)
			return
		}
		if !principal.Account.Active {
			r, w := humachi.Unwrap(ctx)
			writeProblem(w, r, account.ErrInactive)
			return
		}

		ctx = huma.WithValue(ctx, contextx.AccountIDKey, accountID)
		ctx = huma.WithValue(ctx, contextx.SessionIDKey, token)
		ctx = huma.WithValue(ctx, contextx.PrincipalKey, principal)
		next(ctx)
	}
}

func writeUnauthenticated(ctx huma.Context, detail string) {
	r, w := humachi.Unwrap(ctx)
	writeProblem(w, r, account.ErrUnauthenticated.WithDetail(detail))
}

// RequirePermission returns a middleware enforcing that the principal resolved
// by SessionAuthHuma holds the exact permission token. It must run after the
// session gate.
func RequirePermission(permission string, logger *slog.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		principal, ok := ctx.Context().Value(contextx.PrincipalKey).(*account.Principal)
		if !ok {
			writeUnauthenticated(ctx, "missing authorization header")
			return
		}
		if !principal.HasPermission(permission) {
			logger.Warn("permission denied", "account_id", principal.Account.ID, "permission", permission)
			r, w := humachi.Unwrap(ctx)
			writeProblem(w, r, account.ErrPermissionDenied.WithContext(map[string]any{
				"reason":   "missing_permission",
				"required": permission,
			}))
			return
		}
		next(ctx)
	}
}
