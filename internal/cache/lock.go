package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker provides a best-effort distributed lock so background jobs
// never run concurrently. A caller that cannot take the lock must skip
// its run rather than wait.
type Locker interface {
	// TryLock attempts to acquire the named lock for at most ttl.
	// It returns false immediately when the lock is already held.
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Unlock releases the named lock. Releasing an expired or foreign
	// lock is not an error.
	Unlock(ctx context.Context, name string) error
}

type redisLocker struct {
	client *redis.Client
}

// NewLocker returns a Redis SETNX-backed Locker.
func NewLocker(client *redis.Client) Locker {
	return &redisLocker{client: client}
}

func (l *redisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, "lock:"+name, time.Now().Unix(), ttl).Result()
}

func (l *redisLocker) Unlock(ctx context.Context, name string) error {
	return l.client.Del(ctx, "lock:"+name).Err()
}
