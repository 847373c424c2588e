package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Cache defines the interface for caching search responses. Transcripts are
// never cached: each evaluation fetches them fresh.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SearchKey generates a cache key for a search query and result cap
func SearchKey(query string, limit int) string {
	hash := sha256.Sum256([]byte(query))
	return "veritube:search:v1:" + hex.EncodeToString(hash[:]) + ":" + strconv.Itoa(limit)
}
