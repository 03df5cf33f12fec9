package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NoExpiration keeps an entry until it is deleted or the store is cleared
const NoExpiration = gocache.NoExpiration

var _ Store[string] = (*MemoryStore[string])(nil)

// MemoryStore is an in-process Store backed by go-cache
type MemoryStore[V any] struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store. A zero defaultTTL keeps entries
// forever; a zero cleanupInterval disables the janitor goroutine.
func NewMemoryStore[V any](defaultTTL, cleanupInterval time.Duration) *MemoryStore[V] {
	if defaultTTL == 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &MemoryStore[V]{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the store
func (s *MemoryStore[V]) Get(key string) (V, bool) {
	if val, found := s.cache.Get(key); found {
		if v, ok := val.(V); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Set stores a value. A zero ttl uses the store's default.
func (s *MemoryStore[V]) Set(key string, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
}
