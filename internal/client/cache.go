package client

import (
	"strings"
	"sync"
)

// Cache keys. Task lists are cached under KeyTasks plus their query string, so
// invalidating KeyTasks drops every cached page.
const (
	KeyTasks      = "tasks"
	KeyStatistics = "statistics"
	KeyTags       = "tags"
)

// TaskKey is the cache key of a single task.
func TaskKey(id string) string {
	return "task:" + id
}

func tasksKey(query string) string {
	return KeyTasks + "?" + query
}

// Cache holds raw response bodies keyed by request. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Get returns the cached body for key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.entries[key]
	return body, ok
}

// Set stores body under key.
func (c *Cache) Set(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
}

// Invalidate removes every entry whose key equals or starts with one of the
// given keys.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		for _, prefix := range keys {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
