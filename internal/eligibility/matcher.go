package eligibility

import (
	"regexp"
	"strings"
	"time"
)

// districtExclusionMaxAge: school-district blocklists only apply to
// school-age clients; past this age no district exclusion is applied.
const districtExclusionMaxAge = 20

// Matcher evaluates the insurance, district, and office predicates for one
// client against the full evaluator roster. The eligible set is the
// intersection of the three.
type Matcher struct {
	aliases map[string]InsuranceCode
	now     time.Time
}

func NewMatcher(aliases map[string]InsuranceCode, now time.Time) *Matcher {
	return &Matcher{aliases: aliases, now: now}
}

// EligibleSet returns the NPIs of evaluators eligible for the client.
func (m *Matcher) EligibleSet(client Client, profiles []EvaluatorProfile) NPISet {
	byInsurance := m.matchByInsurance(client, profiles)
	byDistrict := m.matchByDistrict(client, profiles)
	byOffice := m.matchByOffice(client, profiles)

	eligible := make(NPISet)
	for npi := range byInsurance {
		if byDistrict.Contains(npi) && byOffice.Contains(npi) {
			eligible[npi] = struct{}{}
		}
	}
	return eligible
}

// matchByInsurance keeps evaluators accepting the client's primary or any
// secondary insurance. A private-pay client can see any evaluator.
func (m *Matcher) matchByInsurance(client Client, profiles []EvaluatorProfile) NPISet {
	if client.PrivatePay {
		return allOf(profiles)
	}

	var codes []InsuranceCode
	if client.PrimaryInsurance != nil {
		codes = append(codes, m.normalize(*client.PrimaryInsurance))
	}
	for _, name := range client.SecondaryInsurances {
		codes = append(codes, m.normalize(name))
	}

	eligible := make(NPISet)
	for _, profile := range profiles {
		for _, code := range codes {
			if profile.Insurances[code] {
				eligible[profile.NPI] = struct{}{}
				break
			}
		}
	}
	return eligible
}

// matchByDistrict excludes evaluators whose blocklist names the client's
// school district or zip. No exclusion applies when the district is unknown
// or the client is past school age.
func (m *Matcher) matchByDistrict(client Client, profiles []EvaluatorProfile) NPISet {
	if client.SchoolDistrict == nil {
		return allOf(profiles)
	}
	if age, known := m.age(client); known && age > districtExclusionMaxAge {
		return allOf(profiles)
	}

	district := normalizeArea(*client.SchoolDistrict)

	eligible := make(NPISet)
	for _, profile := range profiles {
		if districtBlocked(profile.BlockedDistricts, district) {
			continue
		}
		if client.Zip != nil && zipBlocked(profile.BlockedZips, *client.Zip) {
			continue
		}
		eligible[profile.NPI] = struct{}{}
	}
	return eligible
}

// matchByOffice excludes evaluators who do not serve the client's nearest
// office. An unknown office applies no exclusion.
func (m *Matcher) matchByOffice(client Client, profiles []EvaluatorProfile) NPISet {
	if client.ClosestOffice == nil {
		return allOf(profiles)
	}

	office := normalizeArea(*client.ClosestOffice)

	eligible := make(NPISet)
	for _, profile := range profiles {
		if districtBlocked(profile.BlockedOffices, office) {
			continue
		}
		eligible[profile.NPI] = struct{}{}
	}
	return eligible
}

// normalize maps a raw payer name to its canonical code. A name with no
// alias is treated as already canonical.
func (m *Matcher) normalize(raw string) InsuranceCode {
	trimmed := strings.TrimSpace(raw)
	if code, ok := m.aliases[trimmed]; ok {
		return code
	}
	return InsuranceCode(trimmed)
}

func (m *Matcher) age(client Client) (int, bool) {
	if client.BirthDate == nil {
		return 0, false
	}
	dob := *client.BirthDate
	age := m.now.Year() - dob.Year()
	if m.now.Month() < dob.Month() || (m.now.Month() == dob.Month() && m.now.Day() < dob.Day()) {
		age--
	}
	return age, true
}

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// normalizeArea lowercases and strips parenthetical annotations, so
// "Colleton (district 1)" compares equal to "colleton".
func normalizeArea(value string) string {
	return strings.TrimSpace(strings.ToLower(parenthetical.ReplaceAllString(value, "")))
}

func districtBlocked(blocked []string, normalized string) bool {
	for _, name := range blocked {
		if normalizeArea(name) == normalized {
			return true
		}
	}
	return false
}

func zipBlocked(blocked []string, zip string) bool {
	zip = strings.TrimSpace(zip)
	for _, blockedZip := range blocked {
		if strings.TrimSpace(blockedZip) == zip {
			return true
		}
	}
	return false
}

func allOf(profiles []EvaluatorProfile) NPISet {
	all := make(NPISet, len(profiles))
	for _, profile := range profiles {
		all[profile.NPI] = struct{}{}
	}
	return all
}
