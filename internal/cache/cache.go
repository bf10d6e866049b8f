// Package cache holds the availability view caches. The cache is strictly a
// read accelerator: every entry can be dropped at any time and the engine
// recomputes the view from the reservation set.
package cache

import "sync/atomic"

// Stats is a snapshot of cache effectiveness counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Total   int64   `json:"totalRequests"`
	HitRate float64 `json:"hitRate"`
}

// counters tracks lookups with atomics so reads never contend.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *counters) hit()  { c.hits.Add(1) }
func (c *counters) miss() { c.misses.Add(1) }

func (c *counters) snapshot() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	s := Stats{Hits: hits, Misses: misses, Total: hits + misses}
	if s.Total > 0 {
		s.HitRate = float64(hits) / float64(s.Total)
	}
	return s
}
