// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"casetracker/internal/metrics"
)

const (
	// statsKeyPrefix is the Valkey key prefix for cached stats responses.
	statsKeyPrefix = "stats:"

	// DefaultStatsTTL is how long a stats response stays cached.
	DefaultStatsTTL = time.Minute
)

// StatsCache stores encoded stats responses in Valkey. A nil *StatsCache
// is valid and caches nothing. Backend errors are logged and treated as
// misses.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache backed by the given Valkey client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl == 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// StatsKey returns the cache key for a stats endpoint and its query
// parameters. Parameter order does not affect the key.
func StatsKey(endpoint string, params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	// Encode sorts by key.
	return endpoint + "?" + v.Encode()
}

// Get returns the cached response for key.
func (sc *StatsCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if sc == nil {
		return nil, false
	}
	val, err := sc.client.Get(ctx, statsKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.StatsCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		slog.Warn("stats cache get error", "key", key, "error", err)
		metrics.StatsCacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.StatsCacheLookups.WithLabelValues("hit").Inc()
	slog.Debug("stats cache hit", "key", key)
	return val, true
}

// Set stores an encoded response under key with the configured TTL.
func (sc *StatsCache) Set(ctx context.Context, key string, body []byte) {
	if sc == nil {
		return
	}
	if err := sc.client.Set(ctx, statsKeyPrefix+key, body, sc.ttl).Err(); err != nil {
		slog.Warn("stats cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached stats response. Any case mutation can
// change any aggregate, so there is no finer-grained invalidation.
func (sc *StatsCache) InvalidateAll(ctx context.Context) {
	if sc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := sc.client.Scan(ctx, cursor, statsKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("stats cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("stats cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("stats cache cleared", "deleted", deleted)
	}
}
