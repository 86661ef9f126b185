package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript atomically increments the key's counter, stamping the window
// expiry on first use. Returns the count and remaining TTL in milliseconds.
var windowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RedisLimiter shares one fixed window per key across all service instances.
// Expiry handles the window reset, so the increment and reset cannot race.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int
	period time.Duration
}

// NewRedisLimiter builds a Redis-backed window limiter.
func NewRedisLimiter(client *redis.Client, maxRequests int, period time.Duration) *RedisLimiter {
	if maxRequests <= 0 {
		maxRequests = 10
	}
	if period <= 0 {
		period = time.Hour
	}
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:platform:",
		max:    maxRequests,
		period: period,
	}
}

// Take implements Limiter.
func (l *RedisLimiter) Take(ctx context.Context, key string) (Result, error) {
	raw, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.period.Milliseconds()).Result()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit take %s: %w", key, err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Result{}, fmt.Errorf("rate limit take %s: unexpected script reply %T", key, raw)
	}
	count, _ := values[0].(int64)
	ttlMillis, _ := values[1].(int64)

	resetAt := time.Now().Add(l.period)
	if ttlMillis > 0 {
		resetAt = time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)
	}

	return Result{
		Allowed: int(count) <= l.max,
		Count:   int(count),
		Limit:   l.max,
		ResetAt: resetAt,
	}, nil
}
