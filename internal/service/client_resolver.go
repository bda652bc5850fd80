// internal/service/client_resolver.go
package service

import (
	"context"

	"go.uber.org/zap"

	"cdr-mediation/internal/models"
)

// ClientResolver maps a normalized record to a billing client. Primary
// strategy is an exact match of the origination number against a
// client's registered phone; a custom ResolutionStrategy may be injected
// as the secondary. Failure to resolve is a hard stop upstream.
type ClientResolver struct {
	strategy ResolutionStrategy
	logger   *zap.Logger
}

func NewClientResolver(strategy ResolutionStrategy, logger *zap.Logger) *ClientResolver {
	return &ClientResolver{
		strategy: strategy,
		logger:   logger,
	}
}

// Resolve returns the client and found=false when neither strategy
// matches. A storage error is returned separately from no-match.
func (r *ClientResolver) Resolve(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord) (*models.Client, bool, error) {
	client, err := tx.FindClientByPhone(ctx, rec.OriginationNumber)
	if err != nil {
		return nil, false, err
	}
	if client != nil {
		return client, true, nil
	}

	if r.strategy != nil {
		if client, found := r.strategy.Resolve(ctx, rec); found {
			return client, true, nil
		}
	}

	r.logger.Debug("no client match",
		zap.String("cdr_id", rec.CDRID),
		zap.String("origination_number", rec.OriginationNumber))

	return nil, false, nil
}
