// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestConnectValkey(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectValkey(mr.Host(), mr.Port(), "")
	require.NoError(t, err)
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)
}

func TestConnectValkeyUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := ConnectValkey(host, port, "")
	assert.Error(t, err)
}

func TestStatsKeyIgnoresOrder(t *testing.T) {
	a := StatsKey("category", map[string]string{"start-time": "2024-01-01", "end-time": "2024-02-01"})
	b := StatsKey("category", map[string]string{"end-time": "2024-02-01", "start-time": "2024-01-01"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, StatsKey("medium", map[string]string{"start-time": "2024-01-01", "end-time": "2024-02-01"}))
}

func TestStatsCacheSetAndGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	sc := NewStatsCache(client, time.Minute)
	ctx := context.Background()

	_, ok := sc.Get(ctx, "medium?x")
	assert.False(t, ok)

	sc.Set(ctx, "medium?x", []byte(`{"phone":1,"email":2}`))
	got, ok := sc.Get(ctx, "medium?x")
	require.True(t, ok)
	assert.JSONEq(t, `{"phone":1,"email":2}`, string(got))

	mr.FastForward(2 * time.Minute)
	_, ok = sc.Get(ctx, "medium?x")
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestStatsCacheInvalidateAll(t *testing.T) {
	mr, client := setupTestRedis(t)
	sc := NewStatsCache(client, 0)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		sc.Set(ctx, fmt.Sprintf("category?n=%d", i), []byte("{}"))
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	sc.InvalidateAll(ctx)

	_, ok := sc.Get(ctx, "category?n=7")
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestStatsCacheNilIsNoop(t *testing.T) {
	var sc *StatsCache
	ctx := context.Background()

	sc.Set(ctx, "k", []byte("v"))
	sc.InvalidateAll(ctx)
	_, ok := sc.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLimiterWindow(t *testing.T) {
	_, client := setupTestRedis(t)
	l := NewLimiter(client, 3, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, l.Allow(ctx, "10.0.0.1"))
	assert.True(t, l.Allow(ctx, "10.0.0.2"), "keys are limited independently")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(ctx, "10.0.0.1"), "new window starts a new count")
}

func TestLimiterFailsOpen(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewLimiter(client, 1, time.Minute)
	mr.Close()

	assert.True(t, l.Allow(context.Background(), "10.0.0.1"))
	assert.True(t, l.Allow(context.Background(), "10.0.0.1"))
}
