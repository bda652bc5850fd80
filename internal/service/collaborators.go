// internal/service/collaborators.go
// External collaborators the pipeline consumes. Allocation and
// custom client resolution are owned elsewhere; the pipeline only
// depends on these contracts.
package service

import (
	"context"

	"go.uber.org/zap"

	"cdr-mediation/internal/models"
)

// DuplicateCache is the advisory short-TTL fingerprint cache. A hit is
// treated as duplicate immediately; misses and failures fall through to
// the authoritative storage check.
type DuplicateCache interface {
	Has(ctx context.Context, fp models.Fingerprint) bool
	Put(ctx context.Context, fp models.Fingerprint)
}

// UsageAllocationService assigns billable usage into pools and buckets.
// Called after persistence, before pricing.
type UsageAllocationService interface {
	Allocate(ctx context.Context, rec *models.UsageRecord, client *models.Client) (models.AllocationResult, error)
}

// PricingEngine rates a persisted, allocated usage record.
type PricingEngine interface {
	Price(ctx context.Context, rec *models.UsageRecord, alloc models.AllocationResult) (models.PricingResult, error)
}

// AlertEvaluator checks usage thresholds as a fire-and-forget side
// effect; its failures never fail the record.
type AlertEvaluator interface {
	CheckThresholds(ctx context.Context, rec *models.UsageRecord, client *models.Client, alloc models.AllocationResult)
}

// ResolutionStrategy is the extension point for custom client
// resolution (DID ranges, SIP account mapping). found=false is the
// no-match sentinel; implementations never return a partial client.
type ResolutionStrategy interface {
	Resolve(ctx context.Context, rec *models.NormalizedUsageRecord) (client *models.Client, found bool)
}

// NoopAllocationService returns an empty allocation. The production
// allocator lives in the usage-allocation component.
type NoopAllocationService struct{}

func (NoopAllocationService) Allocate(ctx context.Context, rec *models.UsageRecord, client *models.Client) (models.AllocationResult, error) {
	return models.AllocationResult{Pools: []string{}, Buckets: []string{}}, nil
}

// LoggingAlertEvaluator is the default AlertEvaluator: it only logs.
type LoggingAlertEvaluator struct {
	logger *zap.Logger
}

func NewLoggingAlertEvaluator(logger *zap.Logger) *LoggingAlertEvaluator {
	return &LoggingAlertEvaluator{logger: logger}
}

func (e *LoggingAlertEvaluator) CheckThresholds(ctx context.Context, rec *models.UsageRecord, client *models.Client, alloc models.AllocationResult) {
	e.logger.Debug("threshold check",
		zap.String("usage_record_id", rec.ID),
		zap.String("client_id", client.ID))
}
