package account

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/notification"
	"github.com/gatherly-app/gatherly-api/internal/notification/templates"
)

// SendReactivationCode issues a reactivation code for an inactive account.
func (s *service) SendReactivationCode(ctx context.Context, email string) (*IssueResult, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("send reactivation code: lookup failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if acct.Suspended {
		return nil, ErrSuspended
	}
	if acct.Active {
		return nil, ErrAlreadyActive
	}
	return s.issueCode(ctx, acct, PurposeReactivation)
}

// VerifyReactivationCode consumes a reactivation code; success alone flips the
// account back to active, no administrator step involved.
func (s *service) VerifyReactivationCode(ctx context.Context, email, code string) error {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("verify reactivation code: lookup failed", "error", err)
		return ErrInternal.WithCause(err)
	}
	if acct.Suspended {
		return ErrSuspended
	}
	if acct.Active {
		return ErrAlreadyActive
	}

	if err := s.verifyCode(ctx, acct, PurposeReactivation, code); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, acct.ID, true); err != nil {
		s.logger.Error("verify reactivation code: activate failed", "error", err, "account_id", acct.ID)
		return ErrInternal.WithCause(err)
	}
	s.logger.Info("account reactivated", "account_id", acct.ID)
	return nil
}

// SendPasswordResetCode issues a password reset code for the account.
func (s *service) SendPasswordResetCode(ctx context.Context, email string) (*IssueResult, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("send password reset code: lookup failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return s.issueCode(ctx, acct, PurposePasswordReset)
}

// ResetPassword consumes a password reset code and sets the new password in a
// single step. It also closes the one-time initial-password window, since the
// account now has a self-set password either way.
func (s *service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("reset password: lookup failed", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.verifyCode(ctx, acct, PurposePasswordReset, code); err != nil {
		return err
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		s.logger.Error("reset password: hash failed", "error", err)
		return ErrInternal.WithCause(err)
	}
	if err := s.repo.UpdatePassword(ctx, acct.ID, hashed, true); err != nil {
		s.logger.Error("reset password: update failed", "error", err, "account_id", acct.ID)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("password reset completed", "account_id", acct.ID)
	return nil
}

// Deactivate performs self-service deactivation. The caller must type the
// confirmation phrase "deactivate-<localpart>" of their own email, guarding
// against accidental clicks. A mismatch is a validation failure and changes
// nothing.
func (s *service) Deactivate(ctx context.Context, accountID, confirmation string) error {
	acct, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("deactivate: lookup failed", "error", err)
		return ErrInternal.WithCause(err)
	}
	if !acct.Active {
		return ErrAlreadyInactive
	}

	expected := "deactivate-" + acct.EmailLocalPart()
	if confirmation != expected {
		return ErrConfirmationMismatch.WithContext(map[string]any{"expected_format": "deactivate-<email local part>"})
	}

	if err := s.repo.SetActive(ctx, acct.ID, false); err != nil {
		s.logger.Error("deactivate: update failed", "error", err, "account_id", acct.ID)
		return ErrInternal.WithCause(err)
	}

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		data := templates.DeactivatedData{Email: acct.Email, SupportEmail: s.config.SMTP.From}
		if err := notification.SendTemplate(bg, s.mailer, s.renderer, templates.Deactivated, acct.Email, []notification.Channel{notification.ChannelEmail}, notification.PriorityLow, data); err != nil {
			s.logger.Error("failed to send deactivation notice", "error", err, "account_id", acct.ID)
		}
	}()

	s.logger.Info("account deactivated", "account_id", acct.ID)
	return nil
}

// SetInitialPassword completes the one-time PasswordPending flow for an
// OAuth-provisioned account. Once password_set_by_user is true this transition
// is permanently closed.
func (s *service) SetInitialPassword(ctx context.Context, accountID, password string) error {
	acct, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("set initial password: lookup failed", "error", err)
		return ErrInternal.WithCause(err)
	}
	if acct.PasswordSetByUser {
		return ErrPasswordAlreadySet
	}

	hashed, err := hashPassword(password)
	if err != nil {
		s.logger.Error("set initial password: hash failed", "error", err)
		return ErrInternal.WithCause(err)
	}
	if err := s.repo.UpdatePassword(ctx, acct.ID, hashed, true); err != nil {
		s.logger.Error("set initial password: update failed", "error", err, "account_id", acct.ID)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("initial password set", "account_id", acct.ID)
	return nil
}

// Suspend imposes the administrator overlay flag. Suspension blocks all access
// regardless of the active value.
func (s *service) Suspend(ctx context.Context, accountID string) error {
	if err := s.repo.SetSuspended(ctx, accountID, true); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("suspend: update failed", "error", err, "account_id", accountID)
		return ErrInternal.WithCause(err)
	}
	s.logger.Info("account suspended", "account_id", accountID)
	return nil
}

// Unsuspend clears the overlay flag; the prior active value is untouched.
func (s *service) Unsuspend(ctx context.Context, accountID string) error {
	if err := s.repo.SetSuspended(ctx, accountID, false); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("unsuspend: update failed", "error", err, "account_id", accountID)
		return ErrInternal.WithCause(err)
	}
	s.logger.Info("account unsuspended", "account_id", accountID)
	return nil
}
