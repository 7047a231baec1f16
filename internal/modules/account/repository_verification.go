package account

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Verification Codes (6-digit OTP) ---

func (r *repository) CreateVerificationCode(ctx context.Context, vc *VerificationCode) error {
	if vc.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		vc.ID = id.String()
	}
	if vc.CreatedAt.IsZero() {
		vc.CreatedAt = time.Now()
	}

	sql, args, err := r.psql.Insert("verification_codes").
		Columns("id", "account_id", "purpose", "code_hash", "attempts", "max_attempts", "expires_at", "consumed_at", "created_at").
		Values(vc.ID, vc.AccountID, string(vc.Purpose), vc.CodeHash, vc.Attempts, vc.MaxAttempts, vc.ExpiresAt, vc.ConsumedAt, vc.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetActiveVerificationCode returns the newest unconsumed code for the
// (account, purpose) pair. Expiry is a read-time check left to the caller.
func (r *repository) GetActiveVerificationCode(ctx context.Context, accountID string, purpose VerificationPurpose) (*VerificationCode, error) {
	sql, args, err := r.psql.Select(
		"id", "account_id", "purpose", "code_hash", "attempts", "max_attempts", "expires_at", "consumed_at", "created_at",
	).From("verification_codes").
		Where(squirrel.Eq{"account_id": accountID, "purpose": string(purpose)}).
		Where("consumed_at IS NULL").
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	var vc VerificationCode
	if err := pgxscan.Get(ctx, r.db, &vc, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound.WithCause(err)
		}
		return nil, err
	}
	return &vc, nil
}

// InvalidateActiveVerificationCodes stamps consumed_at on every live code for
// the pair, so issuing a new code always leaves at most one active.
func (r *repository) InvalidateActiveVerificationCodes(ctx context.Context, accountID string, purpose VerificationPurpose, at time.Time) error {
	sql, args, err := r.psql.Update("verification_codes").
		Set("consumed_at", at).
		Where(squirrel.Eq{"account_id": accountID, "purpose": string(purpose)}).
		Where("consumed_at IS NULL").
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// IncrementAttemptBelowCeiling atomically bumps the attempt counter, but only
// while the counter is below the ceiling and the code is unconsumed. The
// conditional UPDATE serializes concurrent verify calls at the database: once
// max_attempts increments have happened, every further call affects zero rows,
// so the ceiling cannot be bypassed by parallel guessing.
// ErrTooManyAttempts is returned when no row qualifies.
func (r *repository) IncrementAttemptBelowCeiling(ctx context.Context, id string) (int, int, error) {
	sql := `
        UPDATE verification_codes
        SET attempts = attempts + 1
        WHERE id = $1 AND consumed_at IS NULL AND attempts < max_attempts
        RETURNING attempts, max_attempts
    `
	var attempts, maxAttempts int
	if err := r.db.QueryRow(ctx, sql, id).Scan(&attempts, &maxAttempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrTooManyAttempts.WithCause(err)
		}
		return 0, 0, err
	}
	return attempts, maxAttempts, nil
}

// ConsumeVerificationCode terminally consumes a code. The conditional WHERE
// guarantees single use: a second consume attempt affects zero rows.
func (r *repository) ConsumeVerificationCode(ctx context.Context, id string, at time.Time) error {
	sql, args, err := r.psql.Update("verification_codes").
		Set("consumed_at", at).
		Where(squirrel.Eq{"id": id}).
		Where("consumed_at IS NULL").
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}
