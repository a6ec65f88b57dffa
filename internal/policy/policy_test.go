package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clinic_sync_backend/platform/apperr"
	"clinic_sync_backend/platform/validator"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sync-policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"), validator.New())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if p.TimeToleranceMinutes != 60 {
		t.Fatalf("expected default tolerance, got %d", p.TimeToleranceMinutes)
	}
	if p.LowFrequencyCooldownDays != 182 {
		t.Fatalf("expected default cooldown, got %d", p.LowFrequencyCooldownDays)
	}
	if p.Cooldown() != 182*24*time.Hour {
		t.Fatalf("unexpected cooldown duration %v", p.Cooldown())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writePolicyFile(t, `
time_tolerance_minutes: 30
window_weeks_back: 2
trusted_appointment_ids: ["a1"]
insurance_aliases:
  "Ambetter (ATC)": "ATC"
`)

	p, err := Load(path, validator.New())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if p.TimeToleranceMinutes != 30 {
		t.Fatalf("expected overridden tolerance, got %d", p.TimeToleranceMinutes)
	}
	if p.WindowWeeksBack != 2 {
		t.Fatalf("expected overridden window, got %d", p.WindowWeeksBack)
	}
	// Absent fields keep their defaults.
	if p.WindowWeeksAhead != 4 {
		t.Fatalf("expected default window ahead, got %d", p.WindowWeeksAhead)
	}
	if p.InsuranceAliases["Ambetter (ATC)"] != "ATC" {
		t.Fatalf("expected alias loaded, got %v", p.InsuranceAliases)
	}
	if len(p.TrustedAppointmentIDs) != 1 || p.TrustedAppointmentIDs[0] != "a1" {
		t.Fatalf("expected trusted id, got %v", p.TrustedAppointmentIDs)
	}
}

func TestLoad_MalformedFileIsValidationError(t *testing.T) {
	path := writePolicyFile(t, "time_tolerance_minutes: [nope\n")

	_, err := Load(path, validator.New())
	if err == nil {
		t.Fatalf("expected an error for malformed yaml")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestLoad_InvalidValuesAreRejected(t *testing.T) {
	path := writePolicyFile(t, "time_tolerance_minutes: -5\n")

	_, err := Load(path, validator.New())
	if err == nil {
		t.Fatalf("expected an error for a negative tolerance")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestLoad_BlankAliasIsRejected(t *testing.T) {
	path := writePolicyFile(t, "insurance_aliases:\n  \"Some Payer\": \"\"\n")

	_, err := Load(path, validator.New())
	if err == nil {
		t.Fatalf("expected an error for a blank alias target")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
