package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"application-tracker/internal/shared/telemetry"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return redis.call("PTTL", KEYS[1]) * -1 - 1
end
return 1
`

// RedisLimiter is a fixed-window limiter shared by every API replica.
// A rule allows Burst requests per Burst/Rate seconds. It fails open.
type RedisLimiter struct {
	client  redis.Scripter
	script  *redis.Script
	prefix  string
	timeout time.Duration
}

func NewRedisLimiter(client redis.Scripter) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(rateLimitScript),
		prefix:  "ratelimit:",
		timeout: 250 * time.Millisecond,
	}
}

func (l *RedisLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.client == nil {
		return true, 0
	}
	if key == "" || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	window := time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second))
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	res, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, rule.Burst).Int64()
	if err != nil {
		telemetry.Warn("ratelimit.redis_failed", map[string]any{"error": err.Error()})
		return true, 0
	}
	if res == 1 {
		return true, 0
	}
	// Rejections encode the remaining window as -(pttl+1).
	return false, time.Duration(-res-1) * time.Millisecond
}

var _ Limiter = (*RedisLimiter)(nil)
var _ Limiter = (*RateLimiter)(nil)
