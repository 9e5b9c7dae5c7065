package session

import (
	"context"
	"os"
	"testing"
	"time"

	"moviebot/whatsapp-bot/pkgs/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) Store {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis session tests")
	}

	ctx := context.Background()
	rdb, err := cache.NewRedisClient(ctx, url)
	require.NoError(t, err)

	store, err := NewStore(StoreTypeRedis, WithRedisClient(rdb), WithIdleTTL(time.Minute))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	sender := "test:" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(ctx, sender) })

	sess, err := store.Resolve(ctx, sender)
	require.NoError(t, err)
	assert.Empty(t, sess.History)

	sess.Append(RoleUser, "who directed Alien?", time.Now())
	sess.Append(RoleAssistant, "Ridley Scott.", time.Now())
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Resolve(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	require.Len(t, loaded.History, 2)
	assert.Equal(t, RoleAssistant, loaded.History[1].Role)

	require.NoError(t, store.Delete(ctx, sender))
	fresh, err := store.Resolve(ctx, sender)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, fresh.ID)
}

func TestRedisStore_RejectsBlankSender(t *testing.T) {
	store := setupRedisStore(t)
	_, err := store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSender)
}

// mapCache is an in-process cache.Cache used to exercise the redis driver
// without a server.
type mapCache struct {
	data map[string]Session
	ttls map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string]Session{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Set(ctx context.Context, key string, val Session, duration *time.Duration) error {
	val.History = append([]Turn(nil), val.History...)
	m.data[key] = val
	if duration != nil {
		m.ttls[key] = *duration
	}
	return nil
}

func (m *mapCache) Get(ctx context.Context, key string) (*Session, error) {
	val, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return &val, nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mapCache) Close() error { return nil }

func TestRedisStore_WithCache(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	ch := newMapCache()
	store, err := NewStore(StoreTypeRedis, WithCache(ch), WithIdleTTL(time.Hour), WithClock(clock.Now))
	require.NoError(t, err)

	sess, err := store.Resolve(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, ch.data, "alice")
	assert.Equal(t, time.Hour, ch.ttls["alice"])

	sess.Append(RoleUser, "best Kubrick film?", clock.Now())
	clock.Advance(time.Minute)
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, clock.Now(), ch.data["alice"].UpdatedAt)

	clock.Advance(2 * time.Hour)
	fresh, err := store.Resolve(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, fresh.ID)
}

func TestRedisStore_ZeroIdleTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	ch := newMapCache()
	store, err := NewStore(StoreTypeRedis, WithCache(ch), WithIdleTTL(0), WithClock(clock.Now))
	require.NoError(t, err)

	sess, err := store.Resolve(ctx, "alice")
	require.NoError(t, err)
	require.Contains(t, ch.ttls, "alice")
	assert.Equal(t, time.Duration(0), ch.ttls["alice"])

	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, time.Duration(0), ch.ttls["alice"])

	clock.Advance(365 * 24 * time.Hour)
	same, err := store.Resolve(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, same.ID)
}
