package account

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// --- OAuth states (social login handshake) ---

func (r *repository) InsertOAuthState(ctx context.Context, state *OAuthState) error {
	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now()
	}
	sql, args, err := r.psql.Insert("oauth_states").
		Columns("state", "provider", "account_id", "verifier", "expires_at", "created_at").
		Values(state.State, state.Provider, state.AccountID, state.Verifier, state.ExpiresAt, state.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *repository) GetOAuthStateByState(ctx context.Context, state string) (*OAuthState, error) {
	sql, args, err := r.psql.Select("state", "provider", "account_id", "verifier", "expires_at", "created_at").
		From("oauth_states").
		Where(squirrel.Eq{"state": state}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	var st OAuthState
	if err := pgxscan.Get(ctx, r.db, &st, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOAuthStateInvalid.WithCause(err)
		}
		return nil, err
	}
	return &st, nil
}

func (r *repository) DeleteOAuthState(ctx context.Context, state string) error {
	sql, args, err := r.psql.Delete("oauth_states").
		Where(squirrel.Eq{"state": state}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *repository) DeleteExpiredOAuthStates(ctx context.Context, before time.Time) error {
	sql, args, err := r.psql.Delete("oauth_states").
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
