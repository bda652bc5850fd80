// internal/service/classifier.go
package service

import (
	"strings"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
)

// UsageClassifier determines usage type, service type, usage category,
// and the derived billing category for a normalized record.
type UsageClassifier struct {
	cfg config.ClassifierConfig
}

func NewUsageClassifier(cfg config.ClassifierConfig) *UsageClassifier {
	return &UsageClassifier{cfg: cfg}
}

func (c *UsageClassifier) Classify(rec *models.NormalizedUsageRecord) models.Classification {
	classification := models.Classification{
		UsageType:     models.UsageTypeVoice,
		ServiceType:   c.serviceType(rec),
		UsageCategory: c.usageCategory(rec.DestinationNumber),
	}

	if rec.DataVolumeMB > 0 {
		classification.UsageType = models.UsageTypeData
	}

	classification.BillingCategory = string(classification.ServiceType) + "_" + classification.UsageCategory

	return classification
}

func (c *UsageClassifier) serviceType(rec *models.NormalizedUsageRecord) models.ServiceType {
	if !strings.EqualFold(rec.OriginationCountry, rec.DestinationCountry) {
		return models.ServiceTypeInternational
	}

	if areaCode(rec.OriginationNumber) != areaCode(rec.DestinationNumber) {
		return models.ServiceTypeLongDistance
	}

	return models.ServiceTypeLocal
}

// usageCategory checks are ordered: emergency wins over toll-free wins
// over premium wins over standard.
func (c *UsageClassifier) usageCategory(destination string) string {
	for _, prefix := range c.cfg.EmergencyPrefixes {
		if strings.HasPrefix(destination, prefix) {
			return "emergency"
		}
	}
	for _, prefix := range c.cfg.TollFreePrefixes {
		if strings.HasPrefix(destination, prefix) {
			return "toll_free"
		}
	}
	for _, prefix := range c.cfg.PremiumPrefixes {
		if strings.HasPrefix(destination, prefix) {
			return "premium"
		}
	}
	return "standard"
}

// areaCode returns the first three digits of the national significant
// number: canonical 11-digit NANP numbers skip the leading country code.
func areaCode(number string) string {
	if len(number) == 11 && strings.HasPrefix(number, "1") {
		return number[1:4]
	}
	if len(number) >= 3 {
		return number[:3]
	}
	return number
}
