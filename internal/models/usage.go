// internal/models/usage.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RiskLevel string

const (
	RiskLevelNone       RiskLevel = "none"
	RiskLevelSuspicious RiskLevel = "suspicious"
	RiskLevelHighRisk   RiskLevel = "high_risk"
	RiskLevelConfirmed  RiskLevel = "confirmed"
)

// FraudAssessment is the summed result of all triggered fraud heuristics.
// It is advisory: a high score is surfaced and logged, never a hard block.
type FraudAssessment struct {
	Score      int       `json:"score"`
	Level      RiskLevel `json:"level"`
	Indicators []string  `json:"indicators"`
	IsFraud    bool      `json:"is_fraud"`
}

type UsageType string

const (
	UsageTypeVoice UsageType = "voice"
	UsageTypeData  UsageType = "data"
	UsageTypeOther UsageType = "other"
)

type ServiceType string

const (
	ServiceTypeLocal         ServiceType = "local"
	ServiceTypeLongDistance  ServiceType = "long_distance"
	ServiceTypeInternational ServiceType = "international"
)

// Classification determines how a record is billed.
type Classification struct {
	UsageType       UsageType   `json:"usage_type"`
	ServiceType     ServiceType `json:"service_type"`
	UsageCategory   string      `json:"usage_category"`
	BillingCategory string      `json:"billing_category"`
}

type UnitType string

const (
	UnitMinute UnitType = "minute"
	UnitMB     UnitType = "mb"
	UnitCall   UnitType = "call"
)

// UsageMetrics carries the billable quantity derived from classification
// and raw metrics.
type UsageMetrics struct {
	Quantity        float64  `json:"quantity"`
	UnitType        UnitType `json:"unit_type"`
	DurationSeconds float64  `json:"duration_seconds"`
	DataVolumeMB    float64  `json:"data_volume_mb"`
	LineCount       int      `json:"line_count"`
}

// Client is a resolved billing client identity.
type Client struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	AccountCode string `json:"account_code" db:"account_code"`
	Status      string `json:"status" db:"status"`
}

// UsageRecord is the billing-facing durable aggregate, created exactly
// once per accepted, non-duplicate CDR. The pipeline never mutates it
// after insert except to attach pricing results.
type UsageRecord struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`

	CDRID             string     `json:"cdr_id" db:"cdr_id"`
	ExternalID        string     `json:"external_id" db:"external_id"`
	BatchID           string     `json:"batch_id" db:"batch_id"`
	BatchSequence     int        `json:"batch_sequence" db:"batch_sequence"`
	OriginationNumber string     `json:"origination_number" db:"origination_number"`
	DestinationNumber string     `json:"destination_number" db:"destination_number"`
	UsageStart        time.Time  `json:"usage_start" db:"usage_start"`
	UsageEnd          *time.Time `json:"usage_end,omitempty" db:"usage_end"`
	DurationSeconds   float64    `json:"duration_seconds" db:"duration_seconds"`
	DataVolumeMB      float64    `json:"data_volume_mb" db:"data_volume_mb"`

	UsageType       UsageType   `json:"usage_type" db:"usage_type"`
	ServiceType     ServiceType `json:"service_type" db:"service_type"`
	UsageCategory   string      `json:"usage_category" db:"usage_category"`
	BillingCategory string      `json:"billing_category" db:"billing_category"`
	Quantity        float64     `json:"quantity" db:"quantity"`
	UnitType        UnitType    `json:"unit_type" db:"unit_type"`
	LineCount       int         `json:"line_count" db:"line_count"`

	FraudScore      int      `json:"fraud_score" db:"fraud_score"`
	FraudLevel      string   `json:"fraud_level" db:"fraud_level"`
	FraudIndicators []string `json:"fraud_indicators" db:"fraud_indicators"`

	Source     string    `json:"source" db:"source"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Pricing results, attached after the pricing hand-off.
	ChargeAmount decimal.Decimal `json:"charge_amount" db:"charge_amount"`
	Currency     string          `json:"currency" db:"currency"`
	RateApplied  decimal.Decimal `json:"rate_applied" db:"rate_applied"`
	Priced       bool            `json:"priced" db:"priced"`
}

// AllocationResult reports which pools and buckets absorbed the usage.
// Allocation itself is owned by an external collaborator.
type AllocationResult struct {
	Pools   []string `json:"pools"`
	Buckets []string `json:"buckets"`
}

// PricingResult is written back onto the UsageRecord after rating.
type PricingResult struct {
	ChargeAmount decimal.Decimal `json:"charge_amount"`
	Currency     string          `json:"currency"`
	RateApplied  decimal.Decimal `json:"rate_applied"`
	RuleName     string          `json:"rule_name"`
}
