package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from an arbitrary lookup string
// (geocoder query, ontology file path).
func Key(lookup string) string {
	hash := sha256.Sum256([]byte(lookup))
	return "curaway:v1:" + hex.EncodeToString(hash[:])
}
