package cache

import (
	"context"
	"fmt"
	"time"

	"idle-fm-api/infrastructure/configuration"
	"idle-fm-api/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis and verifies the connection with PING.
func NewCache(ctx context.Context, cfg configuration.RedisClient) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.GetLogger().WithField("addr", client.Options().Addr).Info("Redis client initialized successfully.")
	return client, nil
}

// WindowCounter counts hits per key in fixed windows stored in Redis, so
// every instance of the service shares the same budget.
type WindowCounter struct {
	client redis.Cmdable
	prefix string
}

func NewWindowCounter(client redis.Cmdable, prefix string) *WindowCounter {
	return &WindowCounter{client: client, prefix: prefix}
}

// Hit increments the counter of key for the window containing now and
// returns the new count.
func (w *WindowCounter) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error) {
	bucket := now.UnixNano() / int64(window)
	redisKey := fmt.Sprintf("%s:%s:%d", w.prefix, key, bucket)

	pipe := w.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
