package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/service"
)

// MemoryDayCache is a map-backed day cache for deployments without redis.
// Entries carry the same TTL semantics as the redis cache; expiry is checked
// on read, so no sweeper goroutine is needed.
type MemoryDayCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]memoryEntry

	counters
}

type memoryEntry struct {
	slots     []domain.Slot
	expiresAt time.Time
}

// NewMemoryDayCache constructs an empty MemoryDayCache.
// A non-positive ttl falls back to DefaultTTL.
func NewMemoryDayCache(ttl time.Duration) *MemoryDayCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryDayCache{ttl: ttl, entries: make(map[string]memoryEntry)}
}

// compile-time checks: MemoryDayCache serves both cache roles.
var (
	_ service.DayCache    = (*MemoryDayCache)(nil)
	_ service.Invalidator = (*MemoryDayCache)(nil)
)

func (c *MemoryDayCache) GetDay(_ context.Context, resourceID string, day time.Time) ([]domain.Slot, bool) {
	key := dayKey(resourceID, day)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		c.miss()
		return nil, false
	}
	c.hit()
	return entry.slots, true
}

func (c *MemoryDayCache) SetDay(_ context.Context, resourceID string, day time.Time, slots []domain.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dayKey(resourceID, day)] = memoryEntry{
		slots:     slots,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateResource drops every cached day for the resource.
func (c *MemoryDayCache) InvalidateResource(_ context.Context, resourceID string) {
	prefix := "availability:" + resourceID + ":"

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Stats returns the lookup counters since process start.
func (c *MemoryDayCache) Stats() Stats {
	return c.snapshot()
}

// StatsProvider is implemented by both caches; the admin surface reads it
// without caring which backend is wired.
type StatsProvider interface {
	Stats() Stats
}

var (
	_ StatsProvider = (*MemoryDayCache)(nil)
	_ StatsProvider = (*RedisDayCache)(nil)
)
