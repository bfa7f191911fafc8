package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window counter in Redis. The first hit in a
// window creates the key with the window as its TTL; once the counter
// passes the limit the gate reports limited until the key expires.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter constructs the limiter.
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// IsLimited increments the window counter for key and reports whether the
// limit is exceeded.
func (l *RedisRateLimiter) IsLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}

	return count > int64(limit), nil
}
