package llm

import (
	"sync"
	"time"
)

type cacheEntry struct {
	expiry time.Time
	value  string
}

// responseCache holds completion text keyed by prompt.
type responseCache struct {
	now     func() time.Time
	entries map[string]cacheEntry
	stopCh  chan struct{}
	stop    sync.Once
	ttl     time.Duration
	mu      sync.RWMutex
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	c := &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go c.cleanup(5 * time.Minute)
	return c
}

func (c *responseCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiry) {
		return "", false
	}
	return entry.value, true
}

func (c *responseCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiry: c.now().Add(c.ttl)}
}

func (c *responseCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evict()
		}
	}
}

func (c *responseCache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *responseCache) Close() {
	c.stop.Do(func() { close(c.stopCh) })
}
