package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry represents a cached completion.
type cacheEntry struct {
	expiry time.Time
	text   string
}

// responseCache keeps completions for identical prompts so repeated suggestion
// requests over an unchanged ledger do not hit the provider again.
type responseCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

// newResponseCache creates a cache with the specified TTL. Expired entries are
// dropped lazily on write.
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &responseCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		ttl:     ttl,
	}
}

func cacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.System + "\x00" + req.Prompt))
	return hex.EncodeToString(sum[:])
}

// get returns the completion for key if present and unexpired.
func (c *responseCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return "", false
	}
	return entry.text, true
}

// set stores a completion.
func (c *responseCache) set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{text: text, expiry: now.Add(c.ttl)}
}

// size returns the number of entries in the cache.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
