package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/cache"
	"github.com/gatherly-app/gatherly-api/internal/config"
	"github.com/gatherly-app/gatherly-api/internal/notification"
	"github.com/gatherly-app/gatherly-api/internal/notification/templates"
)

// LoginResult is the outcome of a successful credential check. When the
// account is inactive the credentials were still valid, but the caller must
// route to reactivation instead of establishing a session.
type LoginResult struct {
	Account           *Account
	NeedsReactivation bool
}

// IssueResult describes a freshly issued verification code. Code is the
// plaintext value, only ever handed to the mail collaborator and to tests.
type IssueResult struct {
	Code        string
	ExpiresAt   time.Time
	MaxAttempts int
}

// Service defines the interface for the account module's business logic:
// authentication, the verification code engine, and the account state machine.
type Service interface {
	// Auth
	Register(ctx context.Context, email, password string) (*Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)

	// Authorization
	ResolvePrincipal(ctx context.Context, accountID string) (*Principal, error)
	HasPermission(ctx context.Context, accountID, token string) (bool, error)

	// Reactivation flow
	SendReactivationCode(ctx context.Context, email string) (*IssueResult, error)
	VerifyReactivationCode(ctx context.Context, email, code string) error

	// Password reset flow
	SendPasswordResetCode(ctx context.Context, email string) (*IssueResult, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// State machine
	Deactivate(ctx context.Context, accountID, confirmation string) error
	SetInitialPassword(ctx context.Context, accountID, password string) error
	Suspend(ctx context.Context, accountID string) error
	Unsuspend(ctx context.Context, accountID string) error

	// Dormancy sweep (invoked by the scheduler; idempotent)
	SweepDormantAccounts(ctx context.Context) (int64, error)

	// OAuth
	InitiateOAuthLogin(ctx context.Context) (redirectURL string, err error)
	HandleOAuthCallback(ctx context.Context, state, code string) (*LoginResult, error)
}

// service implements the Service interface.
type service struct {
	repo     Repository
	logger   *slog.Logger
	config   *config.Config
	limiter  cache.Limiter
	mailer   notification.Service
	renderer templates.Renderer
	now      func() time.Time
}

// Config holds the dependencies for the account service.
type Config struct {
	Repo     Repository
	Logger   *slog.Logger
	Config   *config.Config
	Limiter  cache.Limiter
	Mailer   notification.Service
	Renderer templates.Renderer

	// Now is an injectable clock for expiry tests. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates a new account service with the given dependencies.
func NewService(cfg *Config) Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     cfg.Repo,
		logger:   cfg.Logger,
		config:   cfg.Config,
		limiter:  cfg.Limiter,
		mailer:   cfg.Mailer,
		renderer: cfg.Renderer,
		now:      now,
	}
}

// GetAccount returns the account for the given ID.
func (s *service) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

// ResolvePrincipal loads an account together with its role's permission set.
func (s *service) ResolvePrincipal(ctx context.Context, accountID string) (*Principal, error) {
	acct, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	perms, err := s.repo.GetPermissionsForRole(ctx, acct.RoleID)
	if err != nil {
		s.logger.Error("failed to load role permissions", "error", err, "role_id", acct.RoleID)
		return nil, ErrInternal.WithCause(err)
	}
	p := NewPrincipal(acct, perms)
	return &p, nil
}

// HasPermission reports whether the account's role holds the exact token.
func (s *service) HasPermission(ctx context.Context, accountID, token string) (bool, error) {
	p, err := s.ResolvePrincipal(ctx, accountID)
	if err != nil {
		return false, err
	}
	return p.HasPermission(token), nil
}
