package account

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/gatherly-app/gatherly-api/internal/database"
)

// Repository defines the interface for database operations for the account module.
// This abstraction allows the service layer to be independent of the database
// implementation.
type Repository interface {
	// Accounts
	Create(ctx context.Context, acct *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdatePassword(ctx context.Context, accountID, newPasswordHash string, setByUser bool) error
	SetActive(ctx context.Context, accountID string, active bool) error
	SetSuspended(ctx context.Context, accountID string, suspended bool) error
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error
	MarkDormantInactive(ctx context.Context, cutoff time.Time) (int64, error)

	// Roles & permissions
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	GetPermissionsForRole(ctx context.Context, roleID string) ([]Permission, error)

	// Verification codes
	CreateVerificationCode(ctx context.Context, vc *VerificationCode) error
	GetActiveVerificationCode(ctx context.Context, accountID string, purpose VerificationPurpose) (*VerificationCode, error)
	InvalidateActiveVerificationCodes(ctx context.Context, accountID string, purpose VerificationPurpose, at time.Time) error
	IncrementAttemptBelowCeiling(ctx context.Context, id string) (attempts int, maxAttempts int, err error)
	ConsumeVerificationCode(ctx context.Context, id string, at time.Time) error

	// OAuth states (for social login)
	InsertOAuthState(ctx context.Context, state *OAuthState) error
	GetOAuthStateByState(ctx context.Context, state string) (*OAuthState, error)
	DeleteOAuthState(ctx context.Context, state string) error
	DeleteExpiredOAuthStates(ctx context.Context, before time.Time) error
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new account repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
