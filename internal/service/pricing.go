// internal/service/pricing.go
package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
)

// RatePricingEngine is the built-in PricingEngine: a flat per-unit rate
// keyed by billing category. Rate tables beyond this live in the
// external pricing-rule engine; this covers deployments without one.
type RatePricingEngine struct {
	cfg    config.PricingConfig
	logger *zap.Logger
}

func NewRatePricingEngine(cfg config.PricingConfig, logger *zap.Logger) *RatePricingEngine {
	return &RatePricingEngine{
		cfg:    cfg,
		logger: logger,
	}
}

// Price computes charge = rate × quantity with a minimum-charge floor
// on non-zero charges. Decimal arithmetic throughout so repeated
// rating never accumulates float error.
func (e *RatePricingEngine) Price(ctx context.Context, rec *models.UsageRecord, alloc models.AllocationResult) (models.PricingResult, error) {
	rate, ok := e.cfg.Rates[rec.BillingCategory]
	ruleName := rec.BillingCategory
	if !ok {
		rate = e.cfg.DefaultRate
		ruleName = "default"
	}

	charge := rate.Mul(decimal.NewFromFloat(rec.Quantity))
	if charge.IsPositive() && charge.LessThan(e.cfg.MinimumCharge) {
		charge = e.cfg.MinimumCharge
	}

	e.logger.Debug("record priced",
		zap.String("usage_record_id", rec.ID),
		zap.String("billing_category", rec.BillingCategory),
		zap.String("charge", charge.String()))

	return models.PricingResult{
		ChargeAmount: charge,
		Currency:     e.cfg.Currency,
		RateApplied:  rate,
		RuleName:     ruleName,
	}, nil
}
