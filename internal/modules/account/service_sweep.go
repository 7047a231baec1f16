package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/cache"
)

const sweepLockName = "dormancy-sweep"

// SweepDormantAccounts marks every account inactive whose last login (or
// creation, if it never logged in) is older than the dormancy threshold.
// The underlying UPDATE is idempotent, so overlapping or repeated runs can
// never double-process an account. It also purges expired OAuth login
// handshakes left behind by abandoned social logins.
func (s *service) SweepDormantAccounts(ctx context.Context) (int64, error) {
	now := s.now()
	cutoff := now.AddDate(0, 0, -s.config.Dormancy.ThresholdDays)
	n, err := s.repo.MarkDormantInactive(ctx, cutoff)
	if err != nil {
		s.logger.Error("dormancy sweep failed", "error", err)
		return 0, ErrInternal.WithCause(err)
	}
	if n > 0 {
		s.logger.Info("dormancy sweep marked accounts inactive", "count", n, "cutoff", cutoff)
	}

	// Handshake rows are only deleted on completion, so abandoned logins
	// accumulate until this purge.
	if err := s.repo.DeleteExpiredOAuthStates(ctx, now); err != nil {
		s.logger.Error("expired oauth state purge failed", "error", err)
	}
	return n, nil
}

// Sweeper runs the dormancy sweep on a fixed interval, guarded by a
// distributed lock so concurrent runs (e.g. multiple replicas) are skipped
// rather than queued.
type Sweeper struct {
	svc      Service
	locker   cache.Locker
	logger   *slog.Logger
	interval time.Duration
}

// NewSweeper builds a sweeper; interval is typically 24h.
func NewSweeper(svc Service, locker cache.Locker, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, locker: locker, logger: logger, interval: interval}
}

// Run blocks until ctx is cancelled, executing one sweep per interval.
// It performs an immediate first run on startup.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Sweeper) runOnce(ctx context.Context) {
	// Lock TTL covers a generously slow run; a holder crash frees it by expiry.
	acquired, err := w.locker.TryLock(ctx, sweepLockName, w.interval/2)
	if err != nil {
		w.logger.Error("sweep lock acquisition failed", "error", err)
		return
	}
	if !acquired {
		w.logger.Info("dormancy sweep already running elsewhere, skipping")
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, sweepLockName); err != nil {
			w.logger.Error("sweep lock release failed", "error", err)
		}
	}()

	if _, err := w.svc.SweepDormantAccounts(ctx); err != nil {
		w.logger.Error("dormancy sweep run failed", "error", err)
	}
}
