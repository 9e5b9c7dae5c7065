package locker

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

func setupTestLocker(t *testing.T) *RedisLocker {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis locker tests")
	}

	rdb, err := cache.NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisLocker(rdb, "testlock:", WithTTL(10*time.Second), WithRetryInterval(10*time.Millisecond))
}

func TestRedisLocker_ObtainReleaseLock(t *testing.T) {
	locker := setupTestLocker(t)
	ctx := context.Background()
	key := uuid.NewString()

	lck, err := locker.Obtain(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, lck)

	// second obtain should time out while lock is held
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Obtain(waitCtx, key)
	assert.ErrorIs(t, err, ErrNotObtained)

	require.NoError(t, lck.Release(ctx))

	// after release, obtain should succeed again
	lck2, err := locker.Obtain(ctx, key)
	require.NoError(t, err)
	_ = lck2.Release(ctx)
}

func TestNewRedisLocker_Defaults(t *testing.T) {
	r := NewRedisLocker(nil, "p:", WithTTL(0), WithRetryInterval(-1))
	assert.Equal(t, DefaultTTL, r.ttl)
	assert.Equal(t, DefaultRetryInterval, r.retry)
}
