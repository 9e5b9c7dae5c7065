package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache[T any] interface {
	Set(ctx context.Context, key string, val T, duration *time.Duration) error
	Get(ctx context.Context, key string) (*T, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

var DefaultDuration time.Duration = time.Hour * 24

// Redis
type RedisImpl[T any] struct {
	client         *redis.Client
	prefix         string
	validate       bool
	ExpirationTime *time.Duration
}

type RedisOpts struct {
	// Prefix is prepended to every key.
	Prefix string
	// Expiration is used when Set is called without a duration. Zero disables expiry.
	Expiration *time.Duration
	// SkipValidation disables struct validation before Set.
	SkipValidation bool
}
