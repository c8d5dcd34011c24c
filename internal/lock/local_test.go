package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	l := NewLocalLock()
	l.now = func() time.Time { return now }

	first, ok, err := l.Lock(ctx, "schedule:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, first)

	_, ok, err = l.Lock(ctx, "schedule:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second lock on a held key must fail")

	second, ok, err := l.Lock(ctx, "schedule:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different keys are independent")

	require.NoError(t, l.Unlock(ctx, "schedule:1", first))
	_, ok, err = l.Lock(ctx, "schedule:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = l.Lock(ctx, "schedule:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be taken again")

	require.NoError(t, l.Unlock(ctx, "schedule:2", second))
	_, ok, err = l.Lock(ctx, "schedule:2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a stale holder must not release the new lease")
}

func TestLocalLockTokensDifferPerCall(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()

	a, ok, err := l.Lock(ctx, "schedule:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, l.Unlock(ctx, "schedule:1", a))

	b, ok, err := l.Lock(ctx, "schedule:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NotEqual(t, a, b)
}
