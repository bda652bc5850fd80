// internal/cache/fingerprint_cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"cdr-mediation/internal/models"
)

func testFingerprint(cdrID string) models.Fingerprint {
	return models.Fingerprint{
		CDRID:             cdrID,
		OriginationNumber: "15551234567",
		DestinationNumber: "19005551234",
		UsageStart:        time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		DurationSeconds:   45,
	}
}

func TestFingerprintCacheMemoryTier(t *testing.T) {
	// No Redis: the memory tier carries the cache alone.
	c := NewFingerprintCache(nil, time.Hour, zap.NewNop())
	ctx := context.Background()

	fp := testFingerprint("cdr-1")
	if c.Has(ctx, fp) {
		t.Error("Has() = true before Put")
	}

	c.Put(ctx, fp)
	if !c.Has(ctx, fp) {
		t.Error("Has() = false after Put")
	}

	if c.Has(ctx, testFingerprint("cdr-2")) {
		t.Error("Has() = true for a different fingerprint")
	}
}

func TestFingerprintCacheExpiry(t *testing.T) {
	c := NewFingerprintCache(nil, 10*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	fp := testFingerprint("cdr-1")
	c.Put(ctx, fp)

	time.Sleep(20 * time.Millisecond)

	if c.Has(ctx, fp) {
		t.Error("Has() = true after TTL elapsed")
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := CacheKey(testFingerprint("cdr-1"))
	b := CacheKey(testFingerprint("cdr-1"))
	if a != b {
		t.Errorf("CacheKey not stable: %q vs %q", a, b)
	}

	if a == CacheKey(testFingerprint("cdr-2")) {
		t.Error("CacheKey collides across fingerprints")
	}
}

func TestCacheKeySensitiveToDuration(t *testing.T) {
	fp := testFingerprint("cdr-1")
	other := fp
	other.DurationSeconds = 46

	if CacheKey(fp) == CacheKey(other) {
		t.Error("CacheKey ignores duration")
	}
}
