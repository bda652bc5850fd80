// internal/service/alerts.go
package service

import (
	"context"

	"go.uber.org/zap"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
)

// ThresholdAlertEvaluator flags single records that cross configured
// charge or duration thresholds. Delivery of alerts to external systems
// is out of scope; this evaluator logs through zap and whatever ships
// the logs ships the alerts.
type ThresholdAlertEvaluator struct {
	cfg    config.AlertConfig
	logger *zap.Logger
}

func NewThresholdAlertEvaluator(cfg config.AlertConfig, logger *zap.Logger) *ThresholdAlertEvaluator {
	return &ThresholdAlertEvaluator{
		cfg:    cfg,
		logger: logger,
	}
}

func (e *ThresholdAlertEvaluator) CheckThresholds(ctx context.Context, rec *models.UsageRecord, client *models.Client, alloc models.AllocationResult) {
	if rec.Priced && rec.ChargeAmount.GreaterThan(e.cfg.RecordChargeAlert) {
		e.logger.Warn("usage charge threshold exceeded",
			zap.String("usage_record_id", rec.ID),
			zap.String("client_id", client.ID),
			zap.String("charge", rec.ChargeAmount.String()),
			zap.String("threshold", e.cfg.RecordChargeAlert.String()))
	}

	if rec.DurationSeconds > e.cfg.DurationAlertSeconds {
		e.logger.Warn("usage duration threshold exceeded",
			zap.String("usage_record_id", rec.ID),
			zap.String("client_id", client.ID),
			zap.Float64("duration_seconds", rec.DurationSeconds))
	}
}
