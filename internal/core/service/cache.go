package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"cutout/internal/core/domain"
)

// ResultCache memoizes finished runs by the fingerprint of the upload bytes.
// Identical input always yields identical output, so entries are insert-once
// and never evicted or invalidated.
type ResultCache struct {
	entries map[string]*domain.Result
	mutex   sync.RWMutex
}

func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[string]*domain.Result),
	}
}

// Fingerprint returns the deterministic cache key for an upload payload.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *ResultCache) Get(fingerprint string) (*domain.Result, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result, ok := c.entries[fingerprint]
	return result, ok
}

func (c *ResultCache) Put(fingerprint string, result *domain.Result) {
	c.mutex.Lock()
	c.entries[fingerprint] = result
	c.mutex.Unlock()
}

func (c *ResultCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}
