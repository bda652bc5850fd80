// internal/config/config.go
// Injected pattern tables and pipeline options. Deployments and tenants
// override the defaults; nothing here is consulted as a global.
package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationConfig drives the structural checks applied to a RawCDR.
type ValidationConfig struct {
	RequiredFields []string
	// MaxDurationSeconds is a warning threshold, not a rejection.
	MaxDurationSeconds float64
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		RequiredFields: []string{
			"origination_number",
			"destination_number",
			"usage_start",
			"duration_seconds",
		},
		MaxDurationSeconds: 86400,
	}
}

// FraudConfig holds the heuristic pattern tables and score thresholds.
type FraudConfig struct {
	// PremiumPrefixes match against the canonical destination number.
	PremiumPrefixes []string
	// SuspiciousCountries is the international watch-list.
	SuspiciousCountries []string

	ExcessiveDurationSeconds float64
	FrequencyWindow          time.Duration
	FrequencyThreshold       int
	ShortCallSeconds         float64
	RepeatDurationThreshold  int

	ConfirmedThreshold  int
	HighRiskThreshold   int
	SuspiciousThreshold int
}

func DefaultFraudConfig() FraudConfig {
	return FraudConfig{
		PremiumPrefixes: []string{
			"1900", "1976",
			"44871", "44872", "44873",
		},
		SuspiciousCountries: []string{
			"LV", "GM", "SO", "SL", "ZW",
		},
		ExcessiveDurationSeconds: 7200,
		FrequencyWindow:          60 * time.Minute,
		FrequencyThreshold:       100,
		ShortCallSeconds:         5,
		RepeatDurationThreshold:  10,
		ConfirmedThreshold:       80,
		HighRiskThreshold:        50,
		SuspiciousThreshold:      25,
	}
}

// ClassifierConfig holds the destination prefix tables used for usage
// categorization. Premium prefixes are shared with fraud scoring so the
// two stages never disagree on what "premium" means.
type ClassifierConfig struct {
	EmergencyPrefixes []string
	TollFreePrefixes  []string
	PremiumPrefixes   []string
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		EmergencyPrefixes: []string{"911", "112"},
		TollFreePrefixes:  []string{"1800", "1888", "1877", "1866", "1855", "1844", "1833"},
		PremiumPrefixes:   DefaultFraudConfig().PremiumPrefixes,
	}
}

// CacheConfig controls the advisory fingerprint cache.
type CacheConfig struct {
	TTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: time.Hour}
}

// PricingConfig holds per-billing-category rates for the built-in
// rating engine.
type PricingConfig struct {
	Currency string
	// Rates are per unit (minute, MB, call) keyed by billing category.
	Rates map[string]decimal.Decimal
	// DefaultRate applies when no category-specific rate exists.
	DefaultRate decimal.Decimal
	// MinimumCharge floors any non-zero charge.
	MinimumCharge decimal.Decimal
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Currency: "USD",
		Rates: map[string]decimal.Decimal{
			"local_standard":          decimal.NewFromFloat(0.01),
			"long_distance_standard":  decimal.NewFromFloat(0.03),
			"international_standard":  decimal.NewFromFloat(0.15),
			"local_premium":           decimal.NewFromFloat(1.50),
			"long_distance_premium":   decimal.NewFromFloat(1.50),
			"international_premium":   decimal.NewFromFloat(2.50),
			"local_toll_free":         decimal.Zero,
			"long_distance_toll_free": decimal.Zero,
		},
		DefaultRate:   decimal.NewFromFloat(0.05),
		MinimumCharge: decimal.NewFromFloat(0.01),
	}
}

// AlertConfig drives the threshold evaluator.
type AlertConfig struct {
	// HourlySpendAlert triggers a warning when a single record's charge
	// exceeds the amount.
	RecordChargeAlert decimal.Decimal
	// DurationAlertSeconds triggers on unusually long single calls.
	DurationAlertSeconds float64
}

func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		RecordChargeAlert:    decimal.NewFromInt(100),
		DurationAlertSeconds: 14400,
	}
}

// PipelineOptions configures orchestration behavior.
type PipelineOptions struct {
	ChunkSize         int
	EnableBatching    bool
	ProcessingVersion string
	// DefaultCountry is assumed when a record carries no country fields.
	DefaultCountry string
	// RequiredFields overrides the validation default when non-nil.
	RequiredFields []string
	// FieldMap renames source fields to canonical names before validation.
	FieldMap map[string]string
}

func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		ChunkSize:         1000,
		EnableBatching:    true,
		ProcessingVersion: "2.1",
		DefaultCountry:    "US",
	}
}
