package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisAllowScript implementa GCRA: KEYS[1] guarda el "theoretical arrival time" en ms.
// ARGV: intervalo por request (ms), burst, ahora (ms).
// Devuelve {permitido, restantes, reintentar_en_ms}.
const redisAllowScript = `
local interval = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local tat = tonumber(redis.call("GET", KEYS[1]))
if not tat or tat < now then
  tat = now
end
local new_tat = tat + interval
local allow_at = new_tat - burst * interval
if now < allow_at then
  return {0, 0, allow_at - now}
end
redis.call("SET", KEYS[1], new_tat, "PX", math.ceil(new_tat - now))
return {1, math.floor((now - allow_at) / interval), 0}
`

type redisRateLimiter struct {
	client   redisEvaler
	interval time.Duration
	burst    int
	prefix   string
	now      func() time.Time
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisRateLimiter es el mismo token bucket que NewMemoryRateLimiter pero compartido entre réplicas.
func NewRedisRateLimiter(client *redis.Client, perMinute, burst int) RateLimiter {
	if client == nil || perMinute <= 0 {
		return nil
	}
	return newRedisRateLimiter(client, perMinute, burst, time.Now)
}

func newRedisRateLimiter(client redisEvaler, perMinute, burst int, now func() time.Time) *redisRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &redisRateLimiter{
		client:   client,
		interval: time.Minute / time.Duration(perMinute),
		burst:    burst,
		prefix:   "ctx:rl:",
		now:      now,
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) RateDecision {
	if l == nil || l.client == nil {
		return RateDecision{Allowed: true, Remaining: -1}
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return RateDecision{Allowed: false, Remaining: 0}
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	res, err := l.client.Eval(ctx, redisAllowScript, []string{l.prefix + normalizedKey},
		l.interval.Milliseconds(), l.burst, l.now().UnixMilli()).Int64Slice()
	if err != nil || len(res) != 3 {
		// fail-open: Redis caído no debe tumbar el hook
		return RateDecision{Allowed: true, Remaining: -1}
	}
	return RateDecision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}
}
