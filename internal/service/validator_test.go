// internal/service/validator_test.go
package service

import (
	"testing"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
)

func validRaw() models.RawCDR {
	return models.RawCDR{
		"origination_number": "5551234567",
		"destination_number": "5559876543",
		"usage_start":        "2024-01-01T10:00:00Z",
		"duration_seconds":   "45",
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(config.DefaultValidationConfig())

	tests := []struct {
		name       string
		mutate     func(models.RawCDR)
		wantStatus models.ValidationStatus
	}{
		{
			name:       "valid record passes",
			mutate:     func(models.RawCDR) {},
			wantStatus: models.ValidationPassed,
		},
		{
			name: "missing origination number",
			mutate: func(raw models.RawCDR) {
				delete(raw, "origination_number")
			},
			wantStatus: models.ValidationFailed,
		},
		{
			name: "empty required field",
			mutate: func(raw models.RawCDR) {
				raw["destination_number"] = "   "
			},
			wantStatus: models.ValidationFailed,
		},
		{
			name: "non-numeric duration",
			mutate: func(raw models.RawCDR) {
				raw["duration_seconds"] = "abc"
			},
			wantStatus: models.ValidationFailed,
		},
		{
			name: "negative duration",
			mutate: func(raw models.RawCDR) {
				raw["duration_seconds"] = -1
			},
			wantStatus: models.ValidationFailed,
		},
		{
			name: "duration over a day warns only",
			mutate: func(raw models.RawCDR) {
				raw["duration_seconds"] = 90000
			},
			wantStatus: models.ValidationWarning,
		},
		{
			name: "unparseable usage start",
			mutate: func(raw models.RawCDR) {
				raw["usage_start"] = "not-a-timestamp"
			},
			wantStatus: models.ValidationFailed,
		},
		{
			name: "unparseable usage end",
			mutate: func(raw models.RawCDR) {
				raw["usage_end"] = "whenever"
			},
			wantStatus: models.ValidationFailed,
		},
		{
			name: "negative data volume",
			mutate: func(raw models.RawCDR) {
				raw["data_volume_mb"] = "-10"
			},
			wantStatus: models.ValidationFailed,
		},
		{
			name: "numeric duration as native float",
			mutate: func(raw models.RawCDR) {
				raw["duration_seconds"] = 45.5
			},
			wantStatus: models.ValidationPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			got := v.Validate(raw, nil)
			if got.Status != tt.wantStatus {
				t.Errorf("Validate() status = %v, want %v (errors: %v)", got.Status, tt.wantStatus, got.Errors)
			}
		})
	}
}

func TestValidateNegativeDurationAlwaysFails(t *testing.T) {
	v := NewValidator(config.DefaultValidationConfig())

	raw := validRaw()
	raw["duration_seconds"] = "-1"
	raw["data_volume_mb"] = "100"
	raw["carrier_name"] = "Acme Telecom"

	got := v.Validate(raw, nil)
	if got.Status != models.ValidationFailed {
		t.Errorf("Validate() status = %v, want %v", got.Status, models.ValidationFailed)
	}
}

func TestValidateRequiredFieldsOverride(t *testing.T) {
	v := NewValidator(config.DefaultValidationConfig())

	raw := models.RawCDR{"cdr_id": "abc-123"}

	got := v.Validate(raw, []string{"cdr_id"})
	if got.Status != models.ValidationPassed {
		t.Errorf("Validate() status = %v, want %v (errors: %v)", got.Status, models.ValidationPassed, got.Errors)
	}
}

func TestValidateMissingFieldMessage(t *testing.T) {
	v := NewValidator(config.DefaultValidationConfig())

	raw := validRaw()
	delete(raw, "usage_start")

	got := v.Validate(raw, nil)
	if len(got.Errors) != 1 || got.Errors[0] != "missing required field: usage_start" {
		t.Errorf("Validate() errors = %v, want exactly [missing required field: usage_start]", got.Errors)
	}
}
