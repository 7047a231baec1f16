package account

import (
	"strings"
	"time"
)

// AuthProvider identifies how an account's credentials were provisioned.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderOAuth    AuthProvider = "oauth"
)

// Account is the identity anchor for the platform.
//
// Access decisions combine two flags: Suspended is an administrator-imposed
// overlay that always wins, and Active tracks self-service or dormancy
// deactivation. An OAuth-provisioned account keeps PasswordSetByUser=false
// until the one-time initial password flow completes.
type Account struct {
	ID                string       `db:"id"`
	Email             string       `db:"email"`
	PasswordHash      string       `db:"password_hash"`
	Active            bool         `db:"active"`
	Suspended         bool         `db:"suspended"`
	AuthProvider      AuthProvider `db:"auth_provider"`
	PasswordSetByUser bool         `db:"password_set_by_user"`
	RoleID            string       `db:"role_id"`
	LastLoginAt       *time.Time   `db:"last_login_at"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

// EmailLocalPart returns the part of the account email before the '@'.
// Used to build the deactivation confirmation phrase.
func (a *Account) EmailLocalPart() string {
	local, _, _ := strings.Cut(a.Email, "@")
	return local
}

// Role is a named permission bundle (user, volunteer, admin).
type Role struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Permission is an immutable string capability token from the seeded catalog.
type Permission struct {
	ID          string `db:"id"`
	Key         string `db:"key"`
	Description string `db:"description"`
}

// VerificationPurpose defines the reason a 6-digit code is issued.
type VerificationPurpose string

const (
	PurposePasswordReset VerificationPurpose = "password_reset"
	PurposeReactivation  VerificationPurpose = "reactivation"
)

// VerificationCode represents a one-time 6-digit code issued to an account
// for a specific purpose. Only the SHA-256 hash of the code is stored.
type VerificationCode struct {
	ID          string              `db:"id"`
	AccountID   string              `db:"account_id"`
	Purpose     VerificationPurpose `db:"purpose"`
	CodeHash    string              `db:"code_hash"`
	Attempts    int                 `db:"attempts"`
	MaxAttempts int                 `db:"max_attempts"`
	ExpiresAt   time.Time           `db:"expires_at"`
	ConsumedAt  *time.Time          `db:"consumed_at"`
	CreatedAt   time.Time           `db:"created_at"`
}

// OAuthState stores the state/verifier pair of an in-flight OAuth login.
type OAuthState struct {
	State     string    `db:"state"`
	Provider  string    `db:"provider"`
	AccountID *string   `db:"account_id"`
	Verifier  string    `db:"verifier"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
