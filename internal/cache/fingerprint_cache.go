// internal/cache/fingerprint_cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"cdr-mediation/internal/models"
	"cdr-mediation/pkg/redis"
)

// FingerprintCache is the advisory short-TTL duplicate cache. It never
// decides correctness on its own: a hit short-circuits the storage
// lookup, a miss or a Redis failure falls through to the authoritative
// check. Races on it cost redundant lookups, never wrong billing.
type FingerprintCache struct {
	redis    *redis.Client
	logger   *zap.Logger
	memCache *MemoryCache
	ttl      time.Duration
}

// MemoryCache provides the process-local tier for ultra-fast lookups
type MemoryCache struct {
	mu     sync.RWMutex
	data   map[string]time.Time
	maxAge time.Duration
}

// NewFingerprintCache creates the two-tier cache. redisClient may be nil
// for single-process deployments; the memory tier still applies.
func NewFingerprintCache(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *FingerprintCache {
	return &FingerprintCache{
		redis:    redisClient,
		logger:   logger,
		memCache: NewMemoryCache(ttl),
		ttl:      ttl,
	}
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(maxAge time.Duration) *MemoryCache {
	cache := &MemoryCache{
		data:   make(map[string]time.Time),
		maxAge: maxAge,
	}

	// Start cleanup goroutine
	go cache.cleanup()

	return cache
}

// Has reports whether the fingerprint was seen within the TTL window
// (checks memory first, then Redis).
func (fc *FingerprintCache) Has(ctx context.Context, fp models.Fingerprint) bool {
	key := CacheKey(fp)

	if fc.memCache.Has(key) {
		fc.logger.Debug("fingerprint cache hit (memory)", zap.String("key", key))
		return true
	}

	if fc.redis != nil {
		found, err := fc.redis.Exists(ctx, key)
		if err != nil {
			fc.logger.Warn("fingerprint cache lookup failed, falling through to storage",
				zap.Error(err),
				zap.String("key", key))
			return false
		}
		if found {
			fc.logger.Debug("fingerprint cache hit (redis)", zap.String("key", key))
			// Store in memory cache for next time
			fc.memCache.Put(key)
			return true
		}
	}

	return false
}

// Put records the fingerprint in both tiers. Redis failures are logged
// and swallowed; the cache is best-effort.
func (fc *FingerprintCache) Put(ctx context.Context, fp models.Fingerprint) {
	key := CacheKey(fp)

	fc.memCache.Put(key)

	if fc.redis != nil {
		if err := fc.redis.Set(ctx, key, "1", fc.ttl); err != nil {
			fc.logger.Warn("failed to cache fingerprint in redis",
				zap.Error(err),
				zap.String("key", key))
		}
	}
}

// Stats returns cache statistics
func (fc *FingerprintCache) Stats() map[string]interface{} {
	fc.memCache.mu.RLock()
	defer fc.memCache.mu.RUnlock()

	return map[string]interface{}{
		"memory_cache_size": len(fc.memCache.data),
		"ttl":               fc.ttl.String(),
	}
}

// CacheKey derives the stable cache key for a fingerprint.
func CacheKey(fp models.Fingerprint) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%.3f",
		fp.CDRID,
		fp.OriginationNumber,
		fp.DestinationNumber,
		fp.UsageStart.UTC().Unix(),
		fp.DurationSeconds,
	)))
	return "cdr:fp:" + hex.EncodeToString(h[:])
}

// MemoryCache methods

// Has checks membership, honoring the entry age
func (mc *MemoryCache) Has(key string) bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	cachedAt, exists := mc.data[key]
	if !exists {
		return false
	}

	return time.Since(cachedAt) <= mc.maxAge
}

// Put stores in memory cache
func (mc *MemoryCache) Put(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.data[key] = time.Now()
}

// cleanup periodically removes expired entries
func (mc *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		mc.mu.Lock()
		now := time.Now()
		for key, cachedAt := range mc.data {
			if now.Sub(cachedAt) > mc.maxAge {
				delete(mc.data, key)
			}
		}
		mc.mu.Unlock()
	}
}
