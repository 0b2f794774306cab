package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis for distributed sweep locks. Returns
// (nil, nil) when no address is configured; callers must treat a nil client
// as "locking disabled".
func NewRedisClient(ctx context.Context, addr string, logger *slog.Logger) (*redis.Client, error) {
	if addr == "" {
		logger.Info("redis disabled, sweep locks are process-local only")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("connected to redis", "addr", addr)
	return client, nil
}
