// Package cache provides a small in-memory key-value store with
// per-entry TTL, used for short-lived state such as Telegram link codes.
package cache

import (
	"sync"
	"time"
)

// entry is a stored value with its expiration.
type entry struct {
	value     string
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Memory is a mutex-guarded TTL cache. Expired entries are invisible to
// Get immediately and reaped by a background loop.
type Memory struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	stopClean chan struct{}
	stopOnce  sync.Once
}

// NewMemory creates a Memory cache. cleanupInterval controls how often
// the reaper runs; 0 disables it.
func NewMemory(cleanupInterval time.Duration) *Memory {
	c := &Memory{
		entries:   make(map[string]*entry),
		stopClean: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}
	return c
}

// Put stores value under key for ttl.
func (c *Memory) Put(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the value for key, or false when the key is absent or
// expired.
func (c *Memory) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return "", false
	}
	return e.value, true
}

// Delete removes key.
func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Close stops the cleanup loop.
func (c *Memory) Close() {
	c.stopOnce.Do(func() { close(c.stopClean) })
}

func (c *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopClean:
			return
		}
	}
}

func (c *Memory) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}
