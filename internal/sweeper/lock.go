package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockLua deletes the lock key only if its value still matches the
// caller's token, so a holder whose TTL expired cannot release a lock that
// has since been re-acquired by another instance.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// SweepLock serializes a sweep type across engine instances with Redis
// SETNX + TTL. A nil SweepLock (Redis not configured) always grants the
// lock: single-instance deployments fall back to the in-process guard.
type SweepLock struct {
	rdb      *redis.Client
	unlockSc *redis.Script
}

// NewSweepLock creates a distributed sweep lock. rdb may be nil.
func NewSweepLock(rdb *redis.Client) *SweepLock {
	if rdb == nil {
		return nil
	}
	return &SweepLock{rdb: rdb, unlockSc: redis.NewScript(unlockLua)}
}

func lockKey(sweep string) string {
	return "sweep:lock:" + sweep
}

// Acquire returns an unlock func on success, or (nil, false, nil) when
// another instance holds the lock. The unlock func is safe to call twice.
func (l *SweepLock) Acquire(ctx context.Context, sweep string, ttl time.Duration) (func(), bool, error) {
	if l == nil {
		return func() {}, true, nil
	}

	token := uuid.New().String()
	key := lockKey(sweep)

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire sweep lock %s: %w", sweep, err)
	}
	if !ok {
		return nil, false, nil
	}

	released := false
	unlock := func() {
		if released {
			return
		}
		released = true

		// Background context so release works even after the sweep's
		// context is cancelled during shutdown.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = l.unlockSc.Run(unlockCtx, l.rdb, []string{key}, token).Err()
	}
	return unlock, true, nil
}
