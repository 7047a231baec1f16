package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/database"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

type postgresProvider struct {
	db  database.DBTX
	cfg Config
}

func newPostgresProvider(db database.DBTX, cfg Config) *postgresProvider {
	// Defaults
	if cfg.SlidingTTL == 0 {
		cfg.SlidingTTL = 7 * 24 * time.Hour
	}
	if cfg.AbsoluteTTL == 0 {
		cfg.AbsoluteTTL = 30 * 24 * time.Hour
	}
	if cfg.RememberSlidingTTL == 0 {
		cfg.RememberSlidingTTL = 30 * 24 * time.Hour
	}
	if cfg.RememberAbsoluteTTL == 0 {
		cfg.RememberAbsoluteTTL = 90 * 24 * time.Hour
	}
	return &postgresProvider{db: db, cfg: cfg}
}

func (p *postgresProvider) CreateAuthSession(ctx context.Context, accountID string, remember bool, userAgent string, ip string) (string, error) {
	raw, err := randomOpaque(32)
	if err != nil {
		return "", err
	}
	sessionID := "auth:" + raw

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate session row id: %w", err)
	}

	now := time.Now()
	sql := `
		INSERT INTO account_sessions
			(id, account_id, session_token, remember, user_agent, ip_address, last_active_at, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, execErr := p.db.Exec(ctx, sql, id.String(), accountID, sessionID, remember, nullable(userAgent), nullable(ip), now, now)
	if execErr != nil {
		return "", fmt.Errorf("failed to insert session: %w", execErr)
	}

	return sessionID, nil
}

func (p *postgresProvider) GetAndExtend(ctx context.Context, sessionID string) (string, error) {
	accountID, expired, err := p.lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if expired {
		// Best effort cleanup
		_, _ = p.db.Exec(ctx, `DELETE FROM account_sessions WHERE session_token = $1`, sessionID)
		return "", ErrExpired
	}

	// Extend sliding TTL
	_, _ = p.db.Exec(ctx, `UPDATE account_sessions SET last_active_at = $1 WHERE session_token = $2`, time.Now(), sessionID)

	return accountID, nil
}

func (p *postgresProvider) Get(ctx context.Context, sessionID string) (string, error) {
	accountID, expired, err := p.lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if expired {
		return "", ErrExpired
	}
	return accountID, nil
}

// lookup loads a session row and evaluates its TTLs without writing anything.
func (p *postgresProvider) lookup(ctx context.Context, sessionID string) (accountID string, expired bool, err error) {
	if sessionID == "" || !strings.Contains(sessionID, ":") {
		return "", false, ErrNotFound
	}

	var (
		remember     bool
		createdAt    time.Time
		lastActiveAt time.Time
	)

	query := `
		SELECT account_id, remember, created_at, last_active_at
		FROM account_sessions
		WHERE session_token = $1
		LIMIT 1
	`
	row := p.db.QueryRow(ctx, query, sessionID)
	if err := row.Scan(&accountID, &remember, &createdAt, &lastActiveAt); err != nil {
		return "", false, ErrNotFound
	}

	sliding, absolute := p.cfg.SlidingTTL, p.cfg.AbsoluteTTL
	if remember {
		sliding, absolute = p.cfg.RememberSlidingTTL, p.cfg.RememberAbsoluteTTL
	}

	now := time.Now()
	if now.Sub(createdAt) > absolute || now.Sub(lastActiveAt) > sliding {
		return "", true, nil
	}
	return accountID, false, nil
}

func (p *postgresProvider) Delete(ctx context.Context, sessionID string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM account_sessions WHERE session_token = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func randomOpaque(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand read: %w", err)
	}
	// base64url without padding
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
