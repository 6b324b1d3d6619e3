// Package rediscache holds the Redis-backed pieces shared across processes.
package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter: one key per window, expiring with it.
type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(addr string) *RateLimiter {
	return &RateLimiter{
		c: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Allow увеличивает счётчик окна и продлевает TTL ключа.
// Возвращает (allowed, текущее значение счётчика).
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Wrapf(err, "redis ratelimit %s", key)
	}
	n := incr.Val()
	return n <= limit, n, nil
}

// Ping reports whether Redis is reachable; used by the readiness probe.
func (rl *RateLimiter) Ping(ctx context.Context) error {
	if err := rl.c.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis ping")
	}
	return nil
}

func (rl *RateLimiter) Close() error {
	return rl.c.Close()
}
