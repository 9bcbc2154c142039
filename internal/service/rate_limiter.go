package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateDecision es el resultado de consultar el limiter para una request.
// Remaining es -1 cuando no se conoce (por ejemplo, Redis caído).
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter limita la frecuencia de requests por clave (ruta del hook + IP del cliente).
type RateLimiter interface {
	Allow(ctx context.Context, key string) RateDecision
}

const maxTrackedKeys = 10000

type memoryRateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	burst    int
	max      int
	now      func() time.Time
	limiters map[string]*rate.Limiter
}

// NewMemoryRateLimiter crea un token bucket en memoria: perMinute de recarga y burst de capacidad.
// Devuelve nil si perMinute <= 0.
func NewMemoryRateLimiter(perMinute, burst int) RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return newMemoryRateLimiter(perMinute, burst, maxTrackedKeys, time.Now)
}

func newMemoryRateLimiter(perMinute, burst, maxKeys int, now func() time.Time) *memoryRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &memoryRateLimiter{
		interval: time.Minute / time.Duration(perMinute),
		burst:    burst,
		max:      maxKeys,
		now:      now,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) RateDecision {
	key = strings.TrimSpace(key)
	if key == "" {
		return RateDecision{Allowed: false, Remaining: 0}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.max {
			l.evictIdle(now)
		}
		if len(l.limiters) >= l.max {
			// sin lugar para claves nuevas; las claves conocidas siguen con su propio bucket
			return RateDecision{Allowed: false, Remaining: 0, RetryAfter: l.interval}
		}
		limiter = rate.NewLimiter(rate.Every(l.interval), l.burst)
		l.limiters[key] = limiter
	}

	res := limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return RateDecision{Allowed: false, Remaining: 0, RetryAfter: delay}
	}
	return RateDecision{Allowed: true, Remaining: int(limiter.TokensAt(now))}
}

// evictIdle descarta buckets llenos: equivalen a uno recién creado.
func (l *memoryRateLimiter) evictIdle(now time.Time) {
	for key, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}
