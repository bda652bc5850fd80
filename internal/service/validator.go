// internal/service/validator.go
package service

import (
	"fmt"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
)

// Validator checks structural and business-rule validity of a RawCDR
// before the Normalizer mutates anything. Only a Failed status blocks
// the pipeline; warnings travel with the record.
type Validator struct {
	cfg config.ValidationConfig
}

func NewValidator(cfg config.ValidationConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate runs all checks. requiredFields overrides the configured
// default when non-nil.
func (v *Validator) Validate(raw models.RawCDR, requiredFields []string) models.ValidationResult {
	result := models.ValidationResult{
		Status:   models.ValidationPassed,
		Errors:   []string{},
		Warnings: []string{},
	}

	required := requiredFields
	if required == nil {
		required = v.cfg.RequiredFields
	}

	for _, field := range required {
		if !fieldPresent(raw, field) {
			result.Errors = append(result.Errors, fmt.Sprintf("missing required field: %s", field))
		}
	}

	if duration, present, err := fieldFloat(raw, "duration_seconds"); present {
		switch {
		case err != nil:
			result.Errors = append(result.Errors, err.Error())
		case duration < 0:
			result.Errors = append(result.Errors, "duration_seconds cannot be negative")
		case duration > v.cfg.MaxDurationSeconds:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duration_seconds %.0f exceeds %.0f, record flagged for review", duration, v.cfg.MaxDurationSeconds))
		}
	}

	if volume, present, err := fieldFloat(raw, "data_volume_mb"); present {
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else if volume < 0 {
			result.Errors = append(result.Errors, "data_volume_mb cannot be negative")
		}
	}

	if _, present, err := fieldTime(raw, "usage_start"); present && err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	if _, present, err := fieldTime(raw, "usage_end"); present && err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	if len(result.Errors) > 0 {
		result.Status = models.ValidationFailed
	} else if len(result.Warnings) > 0 {
		result.Status = models.ValidationWarning
	}

	return result
}
