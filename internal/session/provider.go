package session

import (
	"context"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/database"
)

// Config controls session TTLs.
type Config struct {
	// SlidingTTL is the idle timeout. Each valid access extends last_active_at
	// by this duration. Default: 7 days.
	SlidingTTL time.Duration

	// AbsoluteTTL is the maximum lifetime from creation. After this duration the
	// session is invalid regardless of activity. Default: 30 days.
	AbsoluteTTL time.Duration

	// RememberSlidingTTL and RememberAbsoluteTTL apply to sessions created with
	// remember=true. Defaults: 30 and 90 days.
	RememberSlidingTTL  time.Duration
	RememberAbsoluteTTL time.Duration
}

// Provider defines operations for managing opaque sessions.
//
// Session IDs MUST be opaque, random, and prefixed with a type, e.g. "auth:".
type Provider interface {
	// CreateAuthSession creates a new auth session for the given account and
	// returns the session ID, e.g. "auth:..." with a base64url-encoded random
	// token part. remember selects the long-lived TTL pair.
	// Optional userAgent and ip can be recorded for auditing.
	CreateAuthSession(ctx context.Context, accountID string, remember bool, userAgent string, ip string) (sessionID string, err error)

	// GetAndExtend validates the given session ID (including TTL checks) and
	// extends the sliding TTL. It returns the associated account ID on success.
	GetAndExtend(ctx context.Context, sessionID string) (accountID string, err error)

	// Get validates the given session ID like GetAndExtend but performs no
	// writes: the sliding TTL is not extended and expired rows are left for
	// the next mutating access to clean up. Used by the auth-check endpoint.
	Get(ctx context.Context, sessionID string) (accountID string, err error)

	// Delete deletes a session by its session ID. It is idempotent.
	Delete(ctx context.Context, sessionID string) error
}

// NewPostgresProvider returns a Postgres-backed Provider implementation.
// Implemented in postgres.go.
func NewPostgresProvider(db database.DBTX, cfg Config) Provider {
	return newPostgresProvider(db, cfg)
}
