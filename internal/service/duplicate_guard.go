// internal/service/duplicate_guard.go
package service

import (
	"context"

	"go.uber.org/zap"

	"cdr-mediation/internal/models"
)

// DuplicateGuard decides whether a normalized record was already
// processed. Two tiers: the advisory fingerprint cache first, then the
// authoritative persisted-record check inside the chunk transaction.
// CDR feeds routinely re-deliver records (retries, multi-path
// ingestion); the cache trades strictness for latency while the storage
// check remains the correctness backstop.
type DuplicateGuard struct {
	cache  DuplicateCache
	logger *zap.Logger
}

func NewDuplicateGuard(cache DuplicateCache, logger *zap.Logger) *DuplicateGuard {
	return &DuplicateGuard{
		cache:  cache,
		logger: logger,
	}
}

// IsDuplicate checks the cache, then storage. On the not-duplicate path
// the fingerprint is cached before returning, suppressing
// same-fingerprint races during the TTL window. A storage error is
// returned to the caller and surfaces as a generic processing failure.
func (g *DuplicateGuard) IsDuplicate(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord) (bool, error) {
	fp := models.FingerprintOf(rec)

	if g.cache != nil && g.cache.Has(ctx, fp) {
		g.logger.Debug("duplicate detected (cache)",
			zap.String("cdr_id", rec.CDRID))
		return true, nil
	}

	exists, err := tx.ExistsByFingerprint(ctx, fp)
	if err != nil {
		return false, err
	}
	if exists {
		g.logger.Debug("duplicate detected (storage)",
			zap.String("cdr_id", rec.CDRID))
		return true, nil
	}

	// Cache-then-allow: populate before the insert completes so a
	// same-fingerprint retry inside the TTL window is suppressed.
	if g.cache != nil {
		g.cache.Put(ctx, fp)
	}

	return false, nil
}
