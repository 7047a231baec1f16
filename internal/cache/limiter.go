package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter used to cap repeated actions,
// e.g. verification code issuance per account per day.
type Limiter interface {
	// Allow increments the counter for key and reports whether the count
	// is still within limit. The window starts on the first increment.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type redisLimiter struct {
	client *redis.Client
}

// NewLimiter returns a Redis-backed fixed-window limiter.
func NewLimiter(client *redis.Client) Limiter {
	return &redisLimiter{client: client}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First hit opens the window.
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
