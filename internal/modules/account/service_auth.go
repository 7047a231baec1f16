package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Register handles the business logic for creating a new password account.
// New accounts start active, unsuspended, with the default "user" role.
func (s *service) Register(ctx context.Context, email, password string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Error("register: email lookup failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		s.logger.Error("register: failed to hash password", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	role, err := s.repo.GetRoleByName(ctx, RoleUser)
	if err != nil {
		s.logger.Error("register: default role missing", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	acct := &Account{
		ID:                id.String(),
		Email:             email,
		PasswordHash:      hashed,
		Active:            true,
		Suspended:         false,
		AuthProvider:      AuthProviderPassword,
		PasswordSetByUser: true,
		RoleID:            role.ID,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		s.logger.Error("register: create failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("account registered", "account_id", acct.ID)
	return acct, nil
}

// Login checks credentials and the account-state flags.
//
// The credential check never reveals whether the email or the password was
// wrong. Suspension takes precedence over inactivity; an inactive account
// passes the credential check but must be routed to reactivation instead of
// receiving a session, which the NeedsReactivation flag signals.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login: email lookup failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if !checkPasswordHash(password, acct.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if acct.Suspended {
		return nil, ErrSuspended
	}
	if !acct.Active {
		return &LoginResult{Account: acct, NeedsReactivation: true}, nil
	}

	if err := s.repo.UpdateLastLogin(ctx, acct.ID, s.now()); err != nil {
		s.logger.Error("login: last-login update failed", "error", err, "account_id", acct.ID)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("account logged in", "account_id", acct.ID)
	return &LoginResult{Account: acct}, nil
}
