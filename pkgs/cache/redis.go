package cache

import (
	"context"
	"encoding/json"
	"moviebot/whatsapp-bot/pkgs/utils"
	"time"

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses connStr and verifies the server answers a PING.
func NewRedisClient(ctx context.Context, connStr string) (*redis.Client, error) {
	if connStr == "" {
		return nil, errors.New("REDIS_URL is not set")
	}

	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to parse redis url")
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Annotatef(err, "failed to ping redis")
	}

	return rdb, nil
}

func NewRedisFromConnectionString[T any](ctx context.Context, connStr string, opts RedisOpts) (Cache[T], error) {
	rdb, err := NewRedisClient(ctx, connStr)
	if err != nil {
		return nil, err
	}
	return NewRedisFromClient[T](rdb, opts), nil
}

// NewRedisFromClient wraps an existing client. Closing the cache closes the client.
// A nil Expiration means DefaultDuration; a non-positive one means keys never expire.
func NewRedisFromClient[T any](rdb *redis.Client, opts RedisOpts) Cache[T] {
	expiration := opts.Expiration
	if expiration == nil {
		expiration = &DefaultDuration
	}
	return &RedisImpl[T]{
		client:         rdb,
		prefix:         opts.Prefix,
		ExpirationTime: expiration,
		validate:       !opts.SkipValidation,
	}
}

// Set stores a value in Redis with JSON serialization
func (r *RedisImpl[T]) Set(ctx context.Context, key string, val T, duration *time.Duration) error {
	if r.validate {
		if err := utils.ValidateStruct(val); err != nil {
			return errors.Annotatef(err, "validator failed the struct %v", val)
		}
	}

	data, err := json.Marshal(val)
	if err != nil {
		return errors.Annotatef(err, "failed to marshal value for key %s", key)
	}

	expiration := *r.ExpirationTime
	if duration != nil {
		expiration = *duration
	}
	// go-redis reads negative values as KEEPTTL
	if expiration < 0 {
		expiration = 0
	}

	return r.client.Set(ctx, r.prefix+key, data, expiration).Err()
}

// Get retrieves and deserializes a value from Redis
func (r *RedisImpl[T]) Get(ctx context.Context, key string) (*T, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			// Key doesn't exist
			return nil, nil
		}
		return nil, err
	}

	var val T
	if err := json.Unmarshal([]byte(data), &val); err != nil {
		return nil, errors.Annotatef(err, "failed to unmarshal value for key %s", key)
	}

	return &val, nil
}

// Delete removes a key. Missing keys are not an error.
func (r *RedisImpl[T]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close closes the Redis connection
func (r *RedisImpl[T]) Close() error {
	return r.client.Close()
}
