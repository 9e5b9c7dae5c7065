package session

import (
	"context"
	"time"

	"moviebot/whatsapp-bot/pkgs/cache"

	"github.com/juju/errors"
)

// redisStore keeps sessions in Redis through the generic JSON cache so several
// processes can share them. Every save refreshes the key TTL.
type redisStore struct {
	cache   cache.Cache[Session]
	idleTTL time.Duration
	now     func() time.Time
}

func newRedisStore(ch cache.Cache[Session], cfg *storeConfig) *redisStore {
	return &redisStore{
		cache:   ch,
		idleTTL: cfg.idleTTL,
		now:     cfg.clock,
	}
}

func (s *redisStore) Resolve(ctx context.Context, senderID string) (*Session, error) {
	if senderID == "" {
		return nil, ErrInvalidSender
	}

	existing, err := s.cache.Get(ctx, senderID)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load session for %s", senderID)
	}

	now := s.now()
	if existing != nil && !existing.Expired(now, s.idleTTL) {
		if existing.History == nil {
			existing.History = []Turn{}
		}
		return existing, nil
	}

	created := newSession(senderID, now)
	if err := s.cache.Set(ctx, senderID, *created, s.ttl()); err != nil {
		return nil, errors.Annotatef(err, "failed to create session for %s", senderID)
	}
	return created, nil
}

func (s *redisStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.SenderID == "" {
		return ErrInvalidSender
	}

	sess.UpdatedAt = s.now()
	if err := s.cache.Set(ctx, sess.SenderID, *sess, s.ttl()); err != nil {
		return errors.Annotatef(err, "failed to save session for %s", sess.SenderID)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, senderID string) error {
	return s.cache.Delete(ctx, senderID)
}

func (s *redisStore) Close() error {
	return s.cache.Close()
}

// ttl mirrors Session.Expired: a non-positive idle TTL keeps keys forever.
func (s *redisStore) ttl() *time.Duration {
	ttl := max(s.idleTTL, 0)
	return &ttl
}
