package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/service"
)

// DefaultTTL bounds how stale a cached day view can get even without
// invalidation traffic.
const DefaultTTL = 5 * time.Minute

// NewClient connects a redis client from a redis:// URL and verifies the
// connection with a ping.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache.NewClient: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache.NewClient: ping: %w", err)
	}
	return client, nil
}

// RedisDayCache stores day views as JSON blobs in redis, one key per resource
// and day, so instances share the cache and invalidation reaches all of them.
// Redis trouble degrades to cache misses, never to request failures.
type RedisDayCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger

	counters
}

// NewRedisDayCache constructs a RedisDayCache.
// A non-positive ttl falls back to DefaultTTL.
func NewRedisDayCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *RedisDayCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisDayCache{rdb: rdb, ttl: ttl, log: log}
}

// compile-time checks: RedisDayCache serves both cache roles.
var (
	_ service.DayCache    = (*RedisDayCache)(nil)
	_ service.Invalidator = (*RedisDayCache)(nil)
)

// dayKey builds the redis key for one resource day.
func dayKey(resourceID string, day time.Time) string {
	return "availability:" + resourceID + ":" + day.Format("2006-01-02")
}

func (c *RedisDayCache) GetDay(ctx context.Context, resourceID string, day time.Time) ([]domain.Slot, bool) {
	raw, err := c.rdb.Get(ctx, dayKey(resourceID, day)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WarnContext(ctx, "cache read failed", "key", dayKey(resourceID, day), "error", err)
		}
		c.miss()
		return nil, false
	}

	var slots []domain.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		// A corrupt entry behaves like a miss and gets overwritten.
		c.log.WarnContext(ctx, "cache entry corrupt", "key", dayKey(resourceID, day), "error", err)
		c.miss()
		return nil, false
	}

	c.hit()
	return slots, true
}

func (c *RedisDayCache) SetDay(ctx context.Context, resourceID string, day time.Time, slots []domain.Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		c.log.WarnContext(ctx, "cache encode failed", "key", dayKey(resourceID, day), "error", err)
		return
	}
	if err := c.rdb.Set(ctx, dayKey(resourceID, day), raw, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "cache write failed", "key", dayKey(resourceID, day), "error", err)
	}
}

// InvalidateResource drops every cached day for the resource.
func (c *RedisDayCache) InvalidateResource(ctx context.Context, resourceID string) {
	pattern := "availability:" + resourceID + ":*"

	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.WarnContext(ctx, "cache scan failed", "pattern", pattern, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.WarnContext(ctx, "cache invalidation failed", "pattern", pattern, "error", err)
		return
	}
	c.log.DebugContext(ctx, "cache invalidated", "resource_id", resourceID, "keys", len(keys))
}

// Stats returns the lookup counters since process start.
func (c *RedisDayCache) Stats() Stats {
	return c.snapshot()
}
