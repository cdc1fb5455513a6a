package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkScript reads the counter first and only increments below the
// limit, so rejected requests stay free, matching FixedWindow. The
// window starts on the first allowed request via PEXPIRE.
var checkScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
    return 0
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 1
`)

// RedisLimiter is the distributed drop-in for FixedWindow: all service
// instances increment the same per-key counter atomically. Backend
// errors are returned to the caller, which fails closed.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RedisLimiter{
		client: client,
		max:    max,
		window: window,
		prefix: "ratelimit:",
	}
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (bool, error) {
	allowed, err := checkScript.Run(ctx, l.client,
		[]string{l.prefix + key}, l.max, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}

	return allowed == 1, nil
}
