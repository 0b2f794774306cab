package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLock(t *testing.T) (*SweepLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSweepLock(rdb), mr
}

func TestSweepLockAcquireRelease(t *testing.T) {
	lock, _ := testLock(t)
	ctx := context.Background()

	unlock, ok, err := lock.Acquire(ctx, "result", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Second acquire while held must be refused, not error.
	_, ok2, err := lock.Acquire(ctx, "result", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok2)

	unlock()

	_, ok3, err := lock.Acquire(ctx, "result", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok3)
}

func TestSweepLockIndependentPerSweep(t *testing.T) {
	lock, _ := testLock(t)
	ctx := context.Background()

	_, ok1, err := lock.Acquire(ctx, "result", time.Minute)
	require.NoError(t, err)
	require.True(t, ok1)

	_, ok2, err := lock.Acquire(ctx, "stale_fancy", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok2, "different sweep types must not contend")
}

func TestSweepLockUnlockOnlyReleasesOwnToken(t *testing.T) {
	lock, mr := testLock(t)
	ctx := context.Background()

	unlock, ok, err := lock.Acquire(ctx, "result", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	// TTL expires; another holder takes the lock.
	mr.FastForward(time.Second)
	unlock2, ok2, err := lock.Acquire(ctx, "result", time.Minute)
	require.NoError(t, err)
	require.True(t, ok2)
	defer unlock2()

	// The stale holder's unlock must not free the new holder's lock.
	unlock()
	_, ok3, err := lock.Acquire(ctx, "result", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok3)
}

func TestSweepLockUnlockIdempotent(t *testing.T) {
	lock, _ := testLock(t)
	ctx := context.Background()

	unlock, ok, err := lock.Acquire(ctx, "result", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	unlock()
	unlock() // second call is a no-op
}

func TestNilSweepLockAlwaysGrants(t *testing.T) {
	var lock *SweepLock
	unlock, ok, err := lock.Acquire(context.Background(), "result", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	unlock()
}
