package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL           = 60 * time.Second
	DefaultRetryInterval = 100 * time.Millisecond
)

// RedisLocker shares locks between processes through Redis.
type RedisLocker struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

type RedisOption func(*RedisLocker)

// WithTTL sets how long a lock survives if its holder never releases it.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *RedisLocker) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRetryInterval sets the polling interval while waiting for a held lock.
func WithRetryInterval(d time.Duration) RedisOption {
	return func(r *RedisLocker) {
		if d > 0 {
			r.retry = d
		}
	}
}

func NewRedisLocker(client *redis.Client, prefix string, opts ...RedisOption) *RedisLocker {
	r := &RedisLocker{
		client: redislock.New(client),
		prefix: prefix,
		ttl:    DefaultTTL,
		retry:  DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Obtain retries until the lock is free. Without a ctx deadline redislock
// gives up after one TTL.
func (r *RedisLocker) Obtain(ctx context.Context, key string) (Lock, error) {
	lockKey := r.prefix + key
	lock, err := r.client.Obtain(ctx, lockKey, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(r.retry),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotObtained, key, ctxErr)
		}
		return nil, fmt.Errorf("failed to obtain lock %s: %w", lockKey, err)
	}
	return lock, nil
}
