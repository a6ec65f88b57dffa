// Package policy holds the operator-tunable rules for the sync jobs: filter
// heuristics, override lists, and insurance name aliases. The thresholds are
// billing conventions tuned per clinic, so they load from a YAML file instead
// of living as constants.
package policy

import (
	"errors"
	"fmt"
	"os"
	"time"

	"clinic_sync_backend/platform/apperr"
	"clinic_sync_backend/platform/validator"

	"gopkg.in/yaml.v3"
)

// Policy configures the reconciliation filter and override behavior.
type Policy struct {
	// TestNames are client names that must never be reconciled.
	TestNames []string `yaml:"test_names"`

	// NonBillableCodes drop a row when the code appears in the numeric
	// substring of the row's name field.
	NonBillableCodes []string `yaml:"non_billable_codes" validate:"dive,numeric"`

	// LowFrequencyCodes are billing codes that may repeat for a client at
	// most once per cooldown window; the first occurrence is always kept.
	LowFrequencyCodes        []string `yaml:"low_frequency_codes" validate:"dive,numeric"`
	LowFrequencyCooldownDays int      `yaml:"low_frequency_cooldown_days" validate:"gte=0"`

	// WindowWeeksBack/Ahead bound the processing window around "now".
	WindowWeeksBack  int `yaml:"window_weeks_back" validate:"gte=0"`
	WindowWeeksAhead int `yaml:"window_weeks_ahead" validate:"gte=0"`

	// TimeToleranceMinutes is the maximum start-time difference for a
	// calendar event to count as the appointment's match.
	TimeToleranceMinutes int `yaml:"time_tolerance_minutes" validate:"gt=0"`

	// TrustedAppointmentIDs are kept despite a miss or mismatch, falling
	// back to the export's claimed evaluator. IgnoredAppointmentIDs are
	// always dropped silently; ignored wins over trusted for the same id.
	TrustedAppointmentIDs []string `yaml:"trusted_appointment_ids"`
	IgnoredAppointmentIDs []string `yaml:"ignored_appointment_ids"`

	// InsuranceAliases map raw payer names from the export to canonical
	// short codes used in evaluator acceptance records.
	InsuranceAliases map[string]string `yaml:"insurance_aliases"`
}

// Default returns the policy used when no policy file is present.
func Default() Policy {
	return Policy{
		TestNames:                nil,
		NonBillableCodes:         []string{"96130"},
		LowFrequencyCodes:        []string{"90000"},
		LowFrequencyCooldownDays: 182,
		WindowWeeksBack:          4,
		WindowWeeksAhead:         4,
		TimeToleranceMinutes:     60,
		InsuranceAliases:         map[string]string{},
	}
}

// Cooldown returns the low-frequency code cooldown as a duration.
func (p Policy) Cooldown() time.Duration {
	return time.Duration(p.LowFrequencyCooldownDays) * 24 * time.Hour
}

// TimeTolerance returns the matching tolerance as a duration.
func (p Policy) TimeTolerance() time.Duration {
	return time.Duration(p.TimeToleranceMinutes) * time.Minute
}

// Load reads the policy file at path, applying defaults for absent fields.
// A missing file yields the default policy; a malformed or invalid file is a
// validation error and must stop the run before any writes.
func Load(path string, val *validator.Validator) (Policy, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return Policy{}, apperr.Wrap(apperr.KindValidation, "read policy file", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, apperr.Wrap(apperr.KindValidation, "parse policy file", err)
	}

	if err := val.Struct(&p); err != nil {
		return Policy{}, apperr.Wrap(apperr.KindValidation, "invalid policy file", err)
	}

	for raw, code := range p.InsuranceAliases {
		if raw == "" || code == "" {
			return Policy{}, apperr.Validation(fmt.Sprintf("insurance alias %q -> %q must not be blank", raw, code))
		}
	}

	return p, nil
}
