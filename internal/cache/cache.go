package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store is a typed key/value cache with per-entry expiry
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
}

// Key builds a namespaced cache key from its parts.
// Parts are hashed so that arbitrary URLs and text are safe to use.
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "trustscan:" + namespace + ":" + hex.EncodeToString(hash[:])
}
