// internal/service/normalizer.go
package service

import (
	"time"

	"github.com/google/uuid"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
)

// Normalizer converts a validated RawCDR into the canonical
// NormalizedUsageRecord. It assumes validation already passed and does
// not re-check; its only side effects are cdr_id generation and the
// received_at wall clock.
type Normalizer struct {
	opts config.PipelineOptions
}

func NewNormalizer(opts config.PipelineOptions) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize builds the canonical record. The raw payload is retained,
// cloned, for audit.
func (n *Normalizer) Normalize(raw models.RawCDR) *models.NormalizedUsageRecord {
	rec := &models.NormalizedUsageRecord{
		CDRID:             fieldString(raw, "cdr_id"),
		ExternalID:        fieldString(raw, "external_id"),
		BatchID:           fieldString(raw, "batch_id"),
		OriginationNumber: NormalizePhoneNumber(fieldString(raw, "origination_number")),
		DestinationNumber: NormalizePhoneNumber(fieldString(raw, "destination_number")),

		OriginationCountry: fieldString(raw, "origination_country"),
		DestinationCountry: fieldString(raw, "destination_country"),
		CarrierName:        fieldString(raw, "carrier_name"),

		Protocol:         fieldString(raw, "protocol"),
		Codec:            fieldString(raw, "codec"),
		RouteType:        fieldString(raw, "route_type"),
		CompletionStatus: fieldString(raw, "completion_status"),

		Source:            fieldString(raw, "source"),
		ReceivedAt:        time.Now().UTC(),
		RawPayload:        raw.Clone(),
		ProcessingVersion: n.opts.ProcessingVersion,
	}

	if rec.CDRID == "" {
		rec.CDRID = uuid.New().String()
	}
	if rec.CompletionStatus == "" {
		rec.CompletionStatus = "completed"
	}
	if rec.OriginationCountry == "" {
		rec.OriginationCountry = n.opts.DefaultCountry
	}
	if rec.DestinationCountry == "" {
		rec.DestinationCountry = n.opts.DefaultCountry
	}

	if start, present, err := fieldTime(raw, "usage_start"); present && err == nil {
		rec.UsageStart = start.UTC()
	}
	if end, present, err := fieldTime(raw, "usage_end"); present && err == nil {
		utc := end.UTC()
		rec.UsageEnd = &utc
	}

	if duration, present, err := fieldFloat(raw, "duration_seconds"); present && err == nil && duration >= 0 {
		rec.DurationSeconds = duration
	}
	if volume, present, err := fieldFloat(raw, "data_volume_mb"); present && err == nil && volume >= 0 {
		rec.DataVolumeMB = volume
	}

	return rec
}

// ApplyFieldMap renames source fields to canonical names. Unmapped keys
// pass through untouched; a mapped target already present in the source
// is not overwritten.
func ApplyFieldMap(raw models.RawCDR, fieldMap map[string]string) models.RawCDR {
	if len(fieldMap) == 0 {
		return raw
	}

	out := make(models.RawCDR, len(raw))
	for k, v := range raw {
		target, mapped := fieldMap[k]
		if !mapped {
			out[k] = v
			continue
		}
		if _, exists := raw[target]; !exists {
			out[target] = v
		}
	}
	return out
}
