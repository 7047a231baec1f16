package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/notification"
	"github.com/gatherly-app/gatherly-api/internal/notification/templates"
)

const codeLength = 6

// issueCode is the core of the verification code engine: it enforces the
// daily issuance cap, invalidates any prior active code for the (account,
// purpose) pair, persists a fresh hashed code, and dispatches the matching
// mail template. Mail dispatch is asynchronous and never fails issuance;
// delivery failures are logged.
func (s *service) issueCode(ctx context.Context, acct *Account, purpose VerificationPurpose) (*IssueResult, error) {
	now := s.now()

	capKey := fmt.Sprintf("vc:%s:%s", acct.ID, purpose)
	allowed, err := s.limiter.Allow(ctx, capKey, s.config.Verification.DailyCap, 24*time.Hour)
	if err != nil {
		s.logger.Error("issue code: limiter failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	// Issuing a new code always invalidates the previous one, but the issue
	// still counted toward the daily cap above.
	if err := s.repo.InvalidateActiveVerificationCodes(ctx, acct.ID, purpose, now); err != nil {
		s.logger.Error("issue code: invalidate prior codes failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	code, err := generateNumericCode(codeLength)
	if err != nil {
		s.logger.Error("issue code: generate failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	expiresAt := now.Add(time.Duration(s.config.Verification.TTLMinutes) * time.Minute)
	vc := &VerificationCode{
		AccountID:   acct.ID,
		Purpose:     purpose,
		CodeHash:    hashToken(code),
		Attempts:    0,
		MaxAttempts: s.config.Verification.MaxAttempts,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}
	if err := s.repo.CreateVerificationCode(ctx, vc); err != nil {
		s.logger.Error("issue code: create failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.dispatchCodeMail(acct, purpose, code, expiresAt)

	return &IssueResult{
		Code:        code,
		ExpiresAt:   expiresAt,
		MaxAttempts: vc.MaxAttempts,
	}, nil
}

// dispatchCodeMail fires the notification without blocking the caller.
func (s *service) dispatchCodeMail(acct *Account, purpose VerificationPurpose, code string, expiresAt time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		expiry := expiresAt.Format("15:04 MST, Jan 2")
		var err error
		switch purpose {
		case PurposeReactivation:
			data := templates.ReactivationCodeData{
				Email:        acct.Email,
				Code:         code,
				ExpiresAt:    expiry,
				SupportEmail: s.config.SMTP.From,
			}
			err = notification.SendTemplate(ctx, s.mailer, s.renderer, templates.ReactivationCode, acct.Email, []notification.Channel{notification.ChannelEmail}, notification.PriorityHigh, data)
		case PurposePasswordReset:
			data := templates.PasswordResetCodeData{
				Email:        acct.Email,
				Code:         code,
				ExpiresAt:    expiry,
				SupportEmail: s.config.SMTP.From,
			}
			err = notification.SendTemplate(ctx, s.mailer, s.renderer, templates.PasswordResetCode, acct.Email, []notification.Channel{notification.ChannelEmail}, notification.PriorityHigh, data)
		}
		if err != nil {
			s.logger.Error("failed to send verification code mail", "error", err, "account_id", acct.ID, "purpose", purpose)
		}
	}()
}

// verifyCode validates a submitted code against the active code for the pair.
//
// Order of checks matters: no active code, then expiry (expired codes do not
// consume an attempt), then the attempt ceiling before any comparison — so
// repeated guessing after the ceiling can never succeed by chance. The
// increment itself is a conditional UPDATE, making the ceiling safe against
// concurrent verify calls for the same code.
func (s *service) verifyCode(ctx context.Context, acct *Account, purpose VerificationPurpose, submitted string) error {
	if strings.TrimSpace(submitted) == "" {
		return ErrInvalidCode
	}

	vc, err := s.repo.GetActiveVerificationCode(ctx, acct.ID, purpose)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return ErrCodeNotFound
		}
		s.logger.Error("verify code: load failed", "error", err)
		return ErrInternal.WithCause(err)
	}

	if s.now().After(vc.ExpiresAt) {
		// Expiry is checked at read time; the record is left in place.
		return ErrCodeExpired
	}

	if vc.Attempts >= vc.MaxAttempts {
		return ErrTooManyAttempts
	}

	attempts, maxAttempts, err := s.repo.IncrementAttemptBelowCeiling(ctx, vc.ID)
	if err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			return ErrTooManyAttempts
		}
		s.logger.Error("verify code: increment failed", "error", err)
		return ErrInternal.WithCause(err)
	}

	if !tokensEqual(hashToken(submitted), vc.CodeHash) {
		remaining := maxAttempts - attempts
		if remaining <= 0 {
			return ErrTooManyAttempts
		}
		return ErrInvalidCode.WithContext(map[string]any{"remaining_attempts": remaining})
	}

	// Success: terminally consume. A concurrent winner makes this affect zero
	// rows, preserving single use.
	if err := s.repo.ConsumeVerificationCode(ctx, vc.ID, s.now()); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return ErrCodeNotFound
		}
		s.logger.Error("verify code: consume failed", "error", err)
		return ErrInternal.WithCause(err)
	}
	return nil
}
