package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/supinter/ums/core"
)

const keyPrefix = "ratelimit:"

// Limiter counts hits per key over a fixed window.
type Limiter interface {
	// Allow records a hit on key and reports whether it is within limit.
	Allow(ctx context.Context, key string) (bool, error)
	Limit() int
}

// New returns a Redis limiter when an address is configured, an in-process one otherwise.
func New(conf *core.Config, window time.Duration) (Limiter, error) {
	limit := conf.RateLimit.LoginPerMinute
	if conf.Redis.Addr == "" {
		return NewMemoryLimiter(limit, window), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return NewRedisLimiter(rdb, limit, window), nil
}

type redisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

var _ Limiter = (*redisLimiter)(nil)

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *redisLimiter {
	return &redisLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *redisLimiter) Limit() int { return l.limit }

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = keyPrefix + key
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, "incrementing rate counter")
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	} else if ttl, _ := l.rdb.TTL(ctx, key).Result(); ttl < 0 {
		// the key survived without expiry (eg. Expire failed after Incr)
		l.rdb.Expire(ctx, key, l.window)
	}
	return count <= int64(l.limit), nil
}

type window struct {
	count   int
	resetAt time.Time
}

type memoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*window
	sweepAt time.Time
}

var _ Limiter = (*memoryLimiter)(nil)

func NewMemoryLimiter(limit int, win time.Duration) *memoryLimiter {
	return &memoryLimiter{limit: limit, window: win, windows: make(map[string]*window)}
}

func (l *memoryLimiter) Limit() int { return l.limit }

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := core.NowFunc()
	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.sweepAt) {
		l.sweep(now)
	}
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit, nil
}

// sweep drops the expired windows. It runs at most once per window length.
func (l *memoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.sweepAt = now.Add(l.window)
}
