package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a scratch redis at TEST_REDIS_ADDR.
func TestRedisLock(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()

	l, err := NewRedisLock(addr, os.Getenv("TEST_REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	key := "schedule:" + uuid.NewString()

	first, ok, err := l.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = l.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// same process, stale token: the key stays held
	require.NoError(t, l.Unlock(ctx, key, uuid.NewString()))
	_, ok, err = l.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "unlock with a foreign token must not release the key")

	require.NoError(t, l.Unlock(ctx, key, first))
	second, ok, err := l.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, first, second)

	// the first holder unlocking again must not free the second lease
	require.NoError(t, l.Unlock(ctx, key, first))
	_, ok, err = l.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Unlock(ctx, key, second))
}
