package market

import (
	"fmt"
	"sync"
	"time"
)

const cacheTTL = time.Minute

type cacheEntry struct {
	value     *Candles
	expiresAt time.Time
}

// candleCache is a small in-process TTL cache keyed by symbol, interval and
// limit. Entries expire rather than being evicted by size; the key space is
// tiny (one entry per chart the UI shows).
type candleCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newCandleCache() *candleCache {
	return &candleCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(symbol, interval string, limit int) string {
	return fmt.Sprintf("%s|%s|%d", symbol, interval, limit)
}

func (c *candleCache) get(key string) (*Candles, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *candleCache) set(key string, value *Candles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(cacheTTL)}
}
