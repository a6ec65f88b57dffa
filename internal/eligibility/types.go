// Package eligibility computes which evaluators may serve which clients and
// keeps the persisted client-evaluator links in step with that computation.
package eligibility

import "time"

// InsuranceCode is a canonical short payer code, e.g. "ATC" or "SCM". Raw
// payer names from the export are normalized to these before lookup.
type InsuranceCode string

// EvaluatorProfile is one evaluator's credentialing data, refreshed
// wholesale each run and read-only within the matcher.
type EvaluatorProfile struct {
	NPI  int64
	Name string

	// Insurances is an explicit acceptance map: a code absent from the map
	// is not accepted. Unknown codes are rejected at load time rather than
	// silently defaulting to false.
	Insurances map[InsuranceCode]bool

	BlockedDistricts []string
	BlockedZips      []string
	BlockedOffices   []string
}

// Client carries the matching inputs for one client. Optional fields use
// nil for "unknown"; the persistence layer collapses "Unknown"-string
// sentinels into nil before they reach the matcher.
type Client struct {
	ID int64

	PrivatePay          bool
	PrimaryInsurance    *string
	SecondaryInsurances []string

	SchoolDistrict *string
	Zip            *string
	BirthDate      *time.Time

	ClosestOffice *string
}

// NPISet is a set of evaluator NPIs.
type NPISet map[int64]struct{}

func (s NPISet) Contains(npi int64) bool {
	_, ok := s[npi]
	return ok
}
