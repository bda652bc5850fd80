// internal/service/metric_calculator.go
package service

import (
	"math"

	"cdr-mediation/internal/models"
)

// MetricCalculator derives the billable quantity and unit type from
// classification plus raw metrics.
type MetricCalculator struct{}

func NewMetricCalculator() *MetricCalculator {
	return &MetricCalculator{}
}

// Calculate bills voice by whole minutes (a partial minute bills as a
// full minute), data by megabytes, and anything else per call.
func (m *MetricCalculator) Calculate(rec *models.NormalizedUsageRecord, c models.Classification) models.UsageMetrics {
	metrics := models.UsageMetrics{
		DurationSeconds: rec.DurationSeconds,
		DataVolumeMB:    rec.DataVolumeMB,
		LineCount:       1,
	}

	switch c.UsageType {
	case models.UsageTypeVoice:
		metrics.Quantity = math.Ceil(rec.DurationSeconds / 60)
		metrics.UnitType = models.UnitMinute
	case models.UsageTypeData:
		metrics.Quantity = rec.DataVolumeMB
		metrics.UnitType = models.UnitMB
	default:
		metrics.Quantity = 1
		metrics.UnitType = models.UnitCall
	}

	return metrics
}
