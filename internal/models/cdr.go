// internal/models/cdr.go
package models

import "time"

// RawCDR is an untyped key/value record as received from a source
// (file row, API payload). It stays owned by the caller until validated.
type RawCDR map[string]interface{}

// Clone returns a shallow copy so the pipeline can retain the raw
// payload for audit without aliasing the caller's map.
func (r RawCDR) Clone() RawCDR {
	out := make(RawCDR, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type ValidationStatus string

const (
	ValidationPassed  ValidationStatus = "passed"
	ValidationWarning ValidationStatus = "warning"
	ValidationFailed  ValidationStatus = "failed"
)

// ValidationResult reports structural and business-rule checks for one RawCDR.
// Only ValidationFailed blocks the pipeline.
type ValidationResult struct {
	Status   ValidationStatus `json:"status"`
	Errors   []string         `json:"errors"`
	Warnings []string         `json:"warnings"`
}

func (v ValidationResult) IsValid() bool {
	return v.Status != ValidationFailed
}

// NormalizedUsageRecord is the pipeline's canonical unit of work, created
// once per RawCDR by the Normalizer and immutable afterwards.
type NormalizedUsageRecord struct {
	// Identity
	CDRID      string `json:"cdr_id"`
	ExternalID string `json:"external_id"`
	BatchID    string `json:"batch_id"`

	// Parties (canonical digits-only)
	OriginationNumber string `json:"origination_number"`
	DestinationNumber string `json:"destination_number"`

	// Timing
	UsageStart      time.Time  `json:"usage_start"`
	UsageEnd        *time.Time `json:"usage_end,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`

	// Volumetrics
	DataVolumeMB float64 `json:"data_volume_mb"`

	// Geography / carrier
	OriginationCountry string `json:"origination_country"`
	DestinationCountry string `json:"destination_country"`
	CarrierName        string `json:"carrier_name"`

	// Technical
	Protocol         string `json:"protocol"`
	Codec            string `json:"codec"`
	RouteType        string `json:"route_type"`
	CompletionStatus string `json:"completion_status"`

	// Provenance
	Source            string    `json:"source"`
	ReceivedAt        time.Time `json:"received_at"`
	RawPayload        RawCDR    `json:"raw_payload"`
	ProcessingVersion string    `json:"processing_version"`

	// Batch position, assigned by the orchestrator before processing so
	// logical order is recoverable across independently committed chunks.
	BatchSequence int `json:"batch_sequence"`
}

// Fingerprint is the derived duplicate-detection key over identity,
// parties, timing, and duration.
type Fingerprint struct {
	CDRID             string
	OriginationNumber string
	DestinationNumber string
	UsageStart        time.Time
	DurationSeconds   float64
}

// FingerprintOf extracts the duplicate-detection fields from a record.
func FingerprintOf(rec *NormalizedUsageRecord) Fingerprint {
	return Fingerprint{
		CDRID:             rec.CDRID,
		OriginationNumber: rec.OriginationNumber,
		DestinationNumber: rec.DestinationNumber,
		UsageStart:        rec.UsageStart,
		DurationSeconds:   rec.DurationSeconds,
	}
}
