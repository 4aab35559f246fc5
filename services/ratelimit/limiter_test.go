package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supinter/ums/core"
)

func hits(t *testing.T, l Limiter, key string, n int) []bool {
	t.Helper()
	got := make([]bool, 0, n)
	for i := 0; i < n; i++ {
		ok, err := l.Allow(context.Background(), key)
		require.NoError(t, err)
		got = append(got, ok)
	}
	return got
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(rdb, 2, time.Minute)

	assert.Equal(t, []bool{true, true, false}, hits(t, l, "10.0.0.1", 3))
	assert.Equal(t, []bool{true}, hits(t, l, "10.0.0.2", 1))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"10.0.0.1"))

	mr.FastForward(time.Minute)
	assert.Equal(t, []bool{true}, hits(t, l, "10.0.0.1", 1))
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time { return now }
	defer func() { core.NowFunc = time.Now }()

	l := NewMemoryLimiter(2, time.Minute)
	assert.Equal(t, []bool{true, true, false}, hits(t, l, "a", 3))

	now = now.Add(time.Minute)
	assert.Equal(t, []bool{true}, hits(t, l, "a", 1))

	t.Run("expired windows are dropped", func(t *testing.T) {
		for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			hits(t, l, ip, 1)
		}
		assert.Len(t, l.windows, 4)

		now = now.Add(time.Minute)
		hits(t, l, "10.0.0.4", 1)
		assert.Len(t, l.windows, 1)
		assert.Contains(t, l.windows, "10.0.0.4")
	})
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()
	l, err := New(conf, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &memoryLimiter{}, l)

	mr := miniredis.RunT(t)
	conf.Redis.Addr = mr.Addr()
	l, err = New(conf, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &redisLimiter{}, l)
	assert.Equal(t, conf.RateLimit.LoginPerMinute, l.Limit())
}
