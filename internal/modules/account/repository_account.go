package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrUniqueViolation = "23505"

var accountColumns = []string{
	"id", "email", "password_hash", "active", "suspended",
	"auth_provider", "password_set_by_user", "role_id",
	"last_login_at", "created_at", "updated_at",
}

// Create inserts a new account record. Emails are stored lowercase so the
// unique index doubles as the case-insensitive uniqueness guarantee.
func (r *repository) Create(ctx context.Context, acct *Account) error {
	now := time.Now()
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = now
	}
	acct.UpdatedAt = now
	acct.Email = strings.ToLower(acct.Email)

	query, args, err := r.psql.Insert("accounts").
		Columns(accountColumns...).
		Values(acct.ID, acct.Email, acct.PasswordHash, acct.Active, acct.Suspended,
			string(acct.AuthProvider), acct.PasswordSetByUser, acct.RoleID,
			acct.LastLoginAt, acct.CreatedAt, acct.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return ErrEmailExists.WithCause(err)
		}
		return err
	}
	return nil
}

// FindByEmail retrieves an account by email, case-insensitively.
// It returns ErrNotFound if no account is found.
func (r *repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query, args, err := r.psql.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"email": strings.ToLower(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var acct Account
	if err := pgxscan.Get(ctx, r.db, &acct, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &acct, nil
}

// FindByID retrieves an account by its unique ID.
func (r *repository) FindByID(ctx context.Context, id string) (*Account, error) {
	query, args, err := r.psql.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var acct Account
	if err := pgxscan.Get(ctx, r.db, &acct, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &acct, nil
}

// UpdatePassword sets a new password hash. setByUser flips the one-way
// password_set_by_user flag for OAuth-provisioned accounts.
func (r *repository) UpdatePassword(ctx context.Context, accountID, newPasswordHash string, setByUser bool) error {
	builder := r.psql.Update("accounts").
		Set("password_hash", newPasswordHash).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": accountID})
	if setByUser {
		builder = builder.Set("password_set_by_user", true)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive updates the active flag.
func (r *repository) SetActive(ctx context.Context, accountID string, active bool) error {
	query, args, err := r.psql.Update("accounts").
		Set("active", active).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSuspended updates the suspended overlay flag; active is left untouched so
// unsuspension restores the prior active value unchanged.
func (r *repository) SetSuspended(ctx context.Context, accountID string, suspended bool) error {
	query, args, err := r.psql.Update("accounts").
		Set("suspended", suspended).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastLogin records a successful authentication.
func (r *repository) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	query, args, err := r.psql.Update("accounts").
		Set("last_login_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDormantInactive flips active=false on every account whose last login
// (or creation, if it never logged in) predates the cutoff. The statement is
// idempotent: rerunning it over the same rows affects nothing.
func (r *repository) MarkDormantInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	sql := `
		UPDATE accounts
		SET active = FALSE, updated_at = NOW()
		WHERE active = TRUE
		  AND COALESCE(last_login_at, created_at) < $1
	`
	tag, err := r.db.Exec(ctx, sql, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
