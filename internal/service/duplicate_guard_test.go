// internal/service/duplicate_guard_test.go
package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"cdr-mediation/internal/models"
)

func guardRecord() *models.NormalizedUsageRecord {
	return &models.NormalizedUsageRecord{
		CDRID:             "cdr-777",
		OriginationNumber: "15551234567",
		DestinationNumber: "15559876543",
		UsageStart:        time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		DurationSeconds:   45,
	}
}

func TestIsDuplicateCacheHit(t *testing.T) {
	cache := newFakeCache()
	guard := NewDuplicateGuard(cache, zap.NewNop())

	rec := guardRecord()
	cache.Put(context.Background(), models.FingerprintOf(rec))

	tx, _ := newFakeStorage().Begin(context.Background())
	dup, err := guard.IsDuplicate(context.Background(), tx, rec)
	if err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	if !dup {
		t.Error("IsDuplicate() = false, want true on cache hit")
	}
}

func TestIsDuplicateAuthoritativeStorage(t *testing.T) {
	// Empty cache, matching persisted record: the storage check is the
	// correctness backstop.
	guard := NewDuplicateGuard(newFakeCache(), zap.NewNop())

	rec := guardRecord()
	storage := newFakeStorage()
	storage.records = append(storage.records, &models.UsageRecord{
		CDRID:             rec.CDRID,
		OriginationNumber: rec.OriginationNumber,
		DestinationNumber: rec.DestinationNumber,
		UsageStart:        rec.UsageStart,
		DurationSeconds:   rec.DurationSeconds,
	})

	tx, _ := storage.Begin(context.Background())
	dup, err := guard.IsDuplicate(context.Background(), tx, rec)
	if err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	if !dup {
		t.Error("IsDuplicate() = false, want true on storage match")
	}
}

func TestIsDuplicatePopulatesCacheOnMiss(t *testing.T) {
	cache := newFakeCache()
	guard := NewDuplicateGuard(cache, zap.NewNop())

	rec := guardRecord()
	tx, _ := newFakeStorage().Begin(context.Background())

	dup, err := guard.IsDuplicate(context.Background(), tx, rec)
	if err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	if dup {
		t.Error("IsDuplicate() = true, want false for fresh record")
	}

	// Cache-then-allow: the same fingerprint is now suppressed without
	// touching storage.
	if !cache.Has(context.Background(), models.FingerprintOf(rec)) {
		t.Error("fingerprint not cached on the not-duplicate path")
	}
}

func TestIsDuplicateDifferentFingerprint(t *testing.T) {
	guard := NewDuplicateGuard(newFakeCache(), zap.NewNop())

	rec := guardRecord()
	storage := newFakeStorage()
	storage.records = append(storage.records, &models.UsageRecord{
		CDRID:             rec.CDRID,
		OriginationNumber: rec.OriginationNumber,
		DestinationNumber: rec.DestinationNumber,
		UsageStart:        rec.UsageStart,
		DurationSeconds:   99, // differs
	})

	tx, _ := storage.Begin(context.Background())
	dup, err := guard.IsDuplicate(context.Background(), tx, rec)
	if err != nil {
		t.Fatalf("IsDuplicate() error = %v", err)
	}
	if dup {
		t.Error("IsDuplicate() = true, want false when any fingerprint field differs")
	}
}
