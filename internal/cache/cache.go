// Package cache keeps downloaded parameter library files so that repeated
// requests against the same remote library fetch it once. It stores raw bytes
// only; resolved records are never cached.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores library file contents by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a library location
func CacheKey(location string) string {
	hash := sha256.Sum256([]byte(location))
	return "thermoparam:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by memory and disk settings: memory only when
// dir is empty, memory in front of disk otherwise.
func New(memoryTTL time.Duration, dir string, diskTTL time.Duration) Cache {
	if dir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(memoryTTL, dir, diskTTL)
}
