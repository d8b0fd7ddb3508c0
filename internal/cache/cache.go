package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw artifact bodies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives the key for one artifact file of a data source. The version
// token is part of the key.
func CacheKey(location, name, version string) string {
	hash := sha256.Sum256([]byte(location + "\x00" + name + "\x00" + version))
	return "manifesto:v1:" + hex.EncodeToString(hash[:])
}
