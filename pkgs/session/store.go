package session

import (
	"context"
	"errors"
	"time"

	"moviebot/whatsapp-bot/pkgs/cache"

	"github.com/redis/go-redis/v9"
)

// Common errors for session store operations.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrInvalidSender    = errors.New("sender id is required")
	ErrClosed           = errors.New("session store closed")
)

// Store keeps one Session per sender id.
type Store interface {
	// Resolve returns the session for senderID, creating and persisting an
	// empty one when none exists or the previous one has expired.
	Resolve(ctx context.Context, senderID string) (*Session, error)

	// Save persists the session and refreshes its idle timer.
	Save(ctx context.Context, s *Session) error

	// Delete forgets the session for senderID. Missing sessions are not an error.
	Delete(ctx context.Context, senderID string) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreType represents the type of session store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// KeyPrefix namespaces session keys in Redis.
const KeyPrefix = "moviebot:session:"

// StoreOption is a functional option for configuring a session store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	idleTTL     time.Duration
	clock       func() time.Time
	redisClient *redis.Client
	cache       cache.Cache[Session]
}

// WithIdleTTL expires sessions that have not been saved for ttl.
// Zero keeps sessions forever in every driver.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.idleTTL = ttl
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) StoreOption {
	return func(c *storeConfig) {
		c.clock = clock
	}
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithCache backs the Redis store with an existing cache.
func WithCache(ch cache.Cache[Session]) StoreOption {
	return func(c *storeConfig) {
		c.cache = ch
	}
}

// NewStore creates a new Store based on the given type.
// The redis type requires WithRedisClient or WithCache.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{clock: time.Now}
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory, "":
		return newMemoryStore(config), nil
	case StoreTypeRedis:
		ch := config.cache
		if ch == nil {
			if config.redisClient == nil {
				return nil, ErrInvalidConfig
			}
			ttl := max(config.idleTTL, 0)
			ch = cache.NewRedisFromClient[Session](config.redisClient, cache.RedisOpts{
				Prefix:     KeyPrefix,
				Expiration: &ttl,
			})
		}
		return newRedisStore(ch, config), nil
	default:
		return nil, ErrInvalidStoreType
	}
}
