package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gatherly-app/gatherly-api/internal/config"
	appmiddleware "github.com/gatherly-app/gatherly-api/internal/middleware"
	"github.com/gatherly-app/gatherly-api/internal/modules/account"
	"github.com/gatherly-app/gatherly-api/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Prefixes that carry credential material or trigger outbound mail get a
// tighter per-IP rate limit than the rest of the API.
var sensitivePrefixes = []string{
	"/auth/login",
	"/auth/register",
	"/reactivation/",
	"/password-reset/",
}

func rateLimitSensitive(requests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := httprate.Limit(requests, window,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range sensitivePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					limited.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// New creates and configures a new server instance.
func New(cfg *config.Config, log *slog.Logger, accountService account.Service, sessions session.Provider) chi.Router {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(httprate.LimitByIP(300, time.Minute))
	router.Use(rateLimitSensitive(10, time.Minute))

	apiConfig := huma.DefaultConfig("Gatherly API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "Opaque",
		},
	}
	api := humachi.New(router, apiConfig)

	authn := appmiddleware.SessionAuthHuma(sessions, accountService, log)
	admin := appmiddleware.RequirePermission(account.PermAdminAccess, log)

	accountHandler := account.NewHandler(accountService, log, sessions)
	accountHandler.RegisterRoutes(api, authn, admin)

	// Register a simple health check endpoint.
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body struct {
			Status string `json:"status"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	return router
}
