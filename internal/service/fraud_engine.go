// internal/service/fraud_engine.go
// Fraud checks
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
)

// FraudEngine computes an additive fraud score from independent
// heuristics. Every heuristic that applies contributes; a rule failure
// is logged and skipped so scoring never fails a record on its own.
// The result is advisory: blocking is the caller's policy decision.
type FraudEngine struct {
	cfg    config.FraudConfig
	logger *zap.Logger
}

func NewFraudEngine(cfg config.FraudConfig, logger *zap.Logger) *FraudEngine {
	return &FraudEngine{
		cfg:    cfg,
		logger: logger,
	}
}

// Score runs all heuristics against a normalized record. The frequency
// and pattern rules query persisted usage through the chunk transaction.
func (s *FraudEngine) Score(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord) models.FraudAssessment {
	assessment := models.FraudAssessment{
		Score:      0,
		Level:      models.RiskLevelNone,
		Indicators: []string{},
	}

	rules := []func(context.Context, StorageTx, *models.NormalizedUsageRecord, *models.FraudAssessment) error{
		s.checkExcessiveDuration,
		s.checkPremiumDestination,
		s.checkSuspiciousInternational,
		s.checkCallFrequency,
		s.checkUnusualPattern,
	}

	for _, rule := range rules {
		if err := rule(ctx, tx, rec, &assessment); err != nil {
			s.logger.Error("fraud rule execution failed",
				zap.Error(err),
				zap.String("cdr_id", rec.CDRID))
		}
	}

	assessment.Level = s.riskLevel(assessment.Score)
	assessment.IsFraud = assessment.Level != models.RiskLevelNone

	if assessment.IsFraud {
		s.logger.Warn("fraud indicators detected",
			zap.String("cdr_id", rec.CDRID),
			zap.Int("score", assessment.Score),
			zap.String("level", string(assessment.Level)),
			zap.Strings("indicators", assessment.Indicators))
	}

	return assessment
}

func (s *FraudEngine) checkExcessiveDuration(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord, a *models.FraudAssessment) error {
	if rec.DurationSeconds > s.cfg.ExcessiveDurationSeconds {
		a.Score += 20
		a.Indicators = append(a.Indicators, "excessive_duration")
	}
	return nil
}

func (s *FraudEngine) checkPremiumDestination(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord, a *models.FraudAssessment) error {
	if s.matchesPremiumPrefix(rec.DestinationNumber) {
		a.Score += 30
		a.Indicators = append(a.Indicators, "premium_rate_destination")
	}
	return nil
}

func (s *FraudEngine) checkSuspiciousInternational(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord, a *models.FraudAssessment) error {
	for _, country := range s.cfg.SuspiciousCountries {
		if strings.EqualFold(rec.DestinationCountry, country) {
			a.Score += 25
			a.Indicators = append(a.Indicators, "suspicious_international")
			break
		}
	}
	return nil
}

func (s *FraudEngine) checkCallFrequency(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord, a *models.FraudAssessment) error {
	since := time.Now().Add(-s.cfg.FrequencyWindow)
	count, err := tx.CountByOriginationSince(ctx, rec.OriginationNumber, since)
	if err != nil {
		return err
	}

	if count > s.cfg.FrequencyThreshold {
		a.Score += 40
		a.Indicators = append(a.Indicators, "excessive_call_frequency")
	}
	return nil
}

func (s *FraudEngine) checkUnusualPattern(ctx context.Context, tx StorageTx, rec *models.NormalizedUsageRecord, a *models.FraudAssessment) error {
	if rec.DurationSeconds < s.cfg.ShortCallSeconds {
		a.Score += 15
		a.Indicators = append(a.Indicators, "unusual_pattern")
		return nil
	}

	since := time.Now().Add(-s.cfg.FrequencyWindow)
	count, err := tx.CountByOriginationAndDuration(ctx, rec.OriginationNumber, rec.DurationSeconds, since)
	if err != nil {
		return err
	}

	if count > s.cfg.RepeatDurationThreshold {
		a.Score += 15
		a.Indicators = append(a.Indicators, "unusual_pattern")
	}
	return nil
}

func (s *FraudEngine) matchesPremiumPrefix(number string) bool {
	for _, prefix := range s.cfg.PremiumPrefixes {
		if strings.HasPrefix(number, prefix) {
			return true
		}
	}
	return false
}

// riskLevel maps the summed score onto the categorical level.
func (s *FraudEngine) riskLevel(score int) models.RiskLevel {
	switch {
	case score >= s.cfg.ConfirmedThreshold:
		return models.RiskLevelConfirmed
	case score >= s.cfg.HighRiskThreshold:
		return models.RiskLevelHighRisk
	case score >= s.cfg.SuspiciousThreshold:
		return models.RiskLevelSuspicious
	default:
		return models.RiskLevelNone
	}
}
