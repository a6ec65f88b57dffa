package eligibility

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func datePtr(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

var matchNow = time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

func rosterForTest() []EvaluatorProfile {
	return []EvaluatorProfile{
		{
			NPI:  1,
			Name: "Dr. Accepts SCM",
			Insurances: map[InsuranceCode]bool{
				"SCM": true,
			},
		},
		{
			NPI:  2,
			Name: "Dr. Accepts ATC, blocked Colleton",
			Insurances: map[InsuranceCode]bool{
				"ATC": true,
			},
			BlockedDistricts: []string{"Colleton (district 1)"},
		},
		{
			NPI:  3,
			Name: "Dr. Accepts both, blocked zip",
			Insurances: map[InsuranceCode]bool{
				"SCM": true,
				"ATC": true,
			},
			BlockedZips: []string{"29488"},
		},
	}
}

func TestEligibleSet_InsurancePredicateWithAlias(t *testing.T) {
	matcher := NewMatcher(map[string]InsuranceCode{"Ambetter (ATC)": "ATC"}, matchNow)
	client := Client{ID: 10, PrimaryInsurance: strPtr("Ambetter (ATC)")}

	eligible := matcher.EligibleSet(client, rosterForTest())

	if eligible.Contains(1) {
		t.Fatalf("evaluator without ATC must not be eligible")
	}
	if !eligible.Contains(2) || !eligible.Contains(3) {
		t.Fatalf("expected ATC-accepting evaluators, got %v", eligible)
	}
}

func TestEligibleSet_SecondaryInsuranceCounts(t *testing.T) {
	matcher := NewMatcher(nil, matchNow)
	client := Client{
		ID:                  10,
		PrimaryInsurance:    strPtr("Nowhere Health"),
		SecondaryInsurances: []string{"SCM"},
	}

	eligible := matcher.EligibleSet(client, rosterForTest())

	if !eligible.Contains(1) || !eligible.Contains(3) {
		t.Fatalf("expected SCM acceptors via secondary insurance, got %v", eligible)
	}
}

func TestEligibleSet_PrivatePayQualifiesForAll(t *testing.T) {
	matcher := NewMatcher(nil, matchNow)
	client := Client{ID: 10, PrivatePay: true}

	eligible := matcher.EligibleSet(client, rosterForTest())

	if len(eligible) != 3 {
		t.Fatalf("expected all evaluators for private pay, got %v", eligible)
	}
}

func TestEligibleSet_BlockedDistrictExcludesEvaluator(t *testing.T) {
	matcher := NewMatcher(nil, matchNow)
	client := Client{
		ID:               10,
		PrivatePay:       true,
		SchoolDistrict:   strPtr("colleton"),
		BirthDate:        datePtr(2018, 5, 1),
	}

	eligible := matcher.EligibleSet(client, rosterForTest())

	// Blocked names compare case-insensitively with parentheticals stripped.
	if eligible.Contains(2) {
		t.Fatalf("expected evaluator 2 excluded for Colleton, got %v", eligible)
	}
	if !eligible.Contains(1) || !eligible.Contains(3) {
		t.Fatalf("expected remaining evaluators eligible, got %v", eligible)
	}
}

func TestEligibleSet_BlockedZipExcludesEvaluator(t *testing.T) {
	matcher := NewMatcher(nil, matchNow)
	client := Client{
		ID:             10,
		PrivatePay:     true,
		SchoolDistrict: strPtr("Dorchester"),
		Zip:            strPtr("29488"),
		BirthDate:      datePtr(2018, 5, 1),
	}

	eligible := matcher.EligibleSet(client, rosterForTest())

	if eligible.Contains(3) {
		t.Fatalf("expected evaluator 3 excluded by zip, got %v", eligible)
	}
}

func TestEligibleSet_AdultClientSkipsDistrictExclusions(t *testing.T) {
	matcher := NewMatcher(nil, matchNow)
	client := Client{
		ID:             10,
		PrivatePay:     true,
		SchoolDistrict: strPtr("Colleton"),
		Zip:            strPtr("29488"),
		BirthDate:      datePtr(2000, 1, 1),
	}

	eligible := matcher.EligibleSet(client, rosterForTest())

	if len(eligible) != 3 {
		t.Fatalf("expected no district exclusions for a client over 20, got %v", eligible)
	}
}

func TestEligibleSet_UnknownDistrictSkipsExclusions(t *testing.T) {
	matcher := NewMatcher(nil, matchNow)
	client := Client{ID: 10, PrivatePay: true, Zip: strPtr("29488")}

	eligible := matcher.EligibleSet(client, rosterForTest())

	if len(eligible) != 3 {
		t.Fatalf("expected no exclusions without a district, got %v", eligible)
	}
}

func TestEligibleSet_BlockedOfficeExcludesEvaluator(t *testing.T) {
	roster := rosterForTest()
	roster[0].BlockedOffices = []string{"Walterboro"}

	matcher := NewMatcher(nil, matchNow)
	client := Client{ID: 10, PrivatePay: true, ClosestOffice: strPtr("walterboro")}

	eligible := matcher.EligibleSet(client, roster)

	if eligible.Contains(1) {
		t.Fatalf("expected evaluator 1 excluded by office, got %v", eligible)
	}
	if !eligible.Contains(2) || !eligible.Contains(3) {
		t.Fatalf("expected remaining evaluators eligible, got %v", eligible)
	}
}

func TestEligibleSet_IsIntersectionOfPredicates(t *testing.T) {
	matcher := NewMatcher(nil, matchNow)

	// Accepts ATC (only evaluators 2 and 3) and lives in Colleton
	// (excludes 2): only evaluator 3 remains.
	client := Client{
		ID:               10,
		PrimaryInsurance: strPtr("ATC"),
		SchoolDistrict:   strPtr("Colleton"),
		BirthDate:        datePtr(2018, 5, 1),
	}

	eligible := matcher.EligibleSet(client, rosterForTest())

	if len(eligible) != 1 || !eligible.Contains(3) {
		t.Fatalf("expected only evaluator 3, got %v", eligible)
	}
}
