package appointments

import (
	"sort"
	"strings"
	"time"

	"clinic_sync_backend/internal/policy"
	"clinic_sync_backend/platform/logger"
)

// Filter drops export rows that must never be reconciled. Output preserves
// input order.
type Filter struct {
	pol policy.Policy
	now time.Time
	log *logger.Logger
}

func NewFilter(pol policy.Policy, now time.Time, log *logger.Logger) *Filter {
	return &Filter{pol: pol, now: now, log: log}
}

// Apply returns the surviving subset of records. Two passes: the first
// applies the per-row rules, the second drops rows whose client already has
// a surviving row on the immediately preceding calendar day (a same-client
// next-day row is an insurance-only placeholder, not a real visit; the
// earlier day's row is the one kept).
func (f *Filter) Apply(records []Record) []Record {
	windowStart := f.now.AddDate(0, 0, -7*f.pol.WindowWeeksBack)
	windowEnd := f.now.AddDate(0, 0, 7*f.pol.WindowWeeksAhead)

	survivors := make([]Record, 0, len(records))
	for _, rec := range records {
		if f.dropRow(rec, windowStart, windowEnd) {
			continue
		}
		survivors = append(survivors, rec)
	}

	survivors = f.dropRepeatedLowFrequency(survivors)

	seenDays := make(map[clientDay]struct{}, len(survivors))
	for _, rec := range survivors {
		seenDays[dayKey(rec.ClientID, rec.Start)] = struct{}{}
	}

	out := make([]Record, 0, len(survivors))
	for _, rec := range survivors {
		previousDay := dayKey(rec.ClientID, rec.Start.AddDate(0, 0, -1))
		if _, ok := seenDays[previousDay]; ok {
			f.log.Warn("skipping next-day placeholder row",
				"client_id", rec.ClientID,
				"appointment_id", rec.ExternalID,
				"date", rec.Start.Format("2006-01-02"),
			)
			continue
		}
		out = append(out, rec)
	}

	return out
}

func (f *Filter) dropRow(rec Record, windowStart, windowEnd time.Time) bool {
	if f.isTestName(rec.ClientName()) {
		return true
	}
	if rec.Cancelled() {
		return true
	}

	code := rec.BillingCode()
	for _, nonBillable := range f.pol.NonBillableCodes {
		if nonBillable != "" && strings.Contains(code, nonBillable) {
			return true
		}
	}

	if rec.Start.Before(windowStart) || rec.Start.After(windowEnd) {
		return true
	}

	return false
}

type cooldownKey struct {
	clientID int64
	code     string
}

// dropRepeatedLowFrequency keeps, per client and per low-frequency code,
// only occurrences at least one full cooldown apart. Each group is walked in
// chronological order regardless of export order, so the earliest occurrence
// is always the one kept; the export is not sorted and two rows for the same
// client may arrive in either order. Output preserves input order.
func (f *Filter) dropRepeatedLowFrequency(records []Record) []Record {
	groups := make(map[cooldownKey][]int)
	for i, rec := range records {
		code := rec.BillingCode()
		for _, lowFrequency := range f.pol.LowFrequencyCodes {
			if lowFrequency == "" || !strings.Contains(code, lowFrequency) {
				continue
			}
			key := cooldownKey{clientID: rec.ClientID, code: lowFrequency}
			groups[key] = append(groups[key], i)
			break
		}
	}

	dropped := make(map[int]struct{})
	for key, indices := range groups {
		sort.SliceStable(indices, func(a, b int) bool {
			return records[indices[a]].Start.Before(records[indices[b]].Start)
		})

		var lastKept time.Time
		for n, i := range indices {
			if n == 0 || records[i].Start.Sub(lastKept) >= f.pol.Cooldown() {
				lastKept = records[i].Start
				continue
			}
			dropped[i] = struct{}{}
			f.log.Info("skipping repeated low-frequency code within cooldown",
				"client_id", key.clientID,
				"appointment_id", records[i].ExternalID,
				"code", key.code,
				"previous", lastKept.Format("2006-01-02"),
			)
		}
	}

	if len(dropped) == 0 {
		return records
	}

	out := make([]Record, 0, len(records)-len(dropped))
	for i, rec := range records {
		if _, ok := dropped[i]; ok {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (f *Filter) isTestName(name string) bool {
	for _, testName := range f.pol.TestNames {
		if strings.EqualFold(name, testName) {
			return true
		}
	}
	return false
}

type clientDay struct {
	clientID int64
	day      string
}

func dayKey(clientID int64, t time.Time) clientDay {
	return clientDay{clientID: clientID, day: t.Format("2006-01-02")}
}
