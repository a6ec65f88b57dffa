package appointments

import (
	"strconv"
	"strings"
	"time"

	"clinic_sync_backend/internal/calendar"
)

// Outcome classifies one appointment's match verdict.
type Outcome int

const (
	// OutcomeMatched means a calendar event was found within tolerance.
	OutcomeMatched Outcome = iota
	// OutcomeTimeMismatch means an event carried the client identifier but
	// its start time differed beyond tolerance.
	OutcomeTimeMismatch
	// OutcomeMiss means no calendar held a candidate event.
	OutcomeMiss
)

// MatchResult is the transient verdict for one record. It is rebuilt every
// run; only its resolved fields reach the database.
type MatchResult struct {
	Outcome    Outcome
	EventID    string
	CalendarID string
	Title      string
	FoundStart time.Time
}

// Matcher searches the day-bucketed calendar index for each record's event.
type Matcher struct {
	tolerance time.Duration
}

func NewMatcher(tolerance time.Duration) *Matcher {
	return &Matcher{tolerance: tolerance}
}

// Match scans calendars in the index's lexical order and returns the first
// event on the record's calendar day whose description contains the client
// identifier and whose start is within tolerance. A candidate with the right
// client but the wrong time ends the search as a time mismatch; the verdict
// is deterministic and a second call over the same index yields the same
// result.
func (m *Matcher) Match(rec Record, idx *calendar.Index) MatchResult {
	clientID := strconv.FormatInt(rec.ClientID, 10)
	day := calendar.DayOf(rec.Start)

	for _, calendarID := range idx.CalendarIDs() {
		for _, event := range idx.Bucket(calendarID, day) {
			if !containsClientID(event.Description, clientID) {
				continue
			}

			diff := event.Start.Sub(rec.Start)
			if diff < 0 {
				diff = -diff
			}

			if diff <= m.tolerance {
				return MatchResult{
					Outcome:    OutcomeMatched,
					EventID:    event.ID,
					CalendarID: calendarID,
					Title:      event.Summary,
					FoundStart: event.Start,
				}
			}

			return MatchResult{
				Outcome:    OutcomeTimeMismatch,
				EventID:    event.ID,
				CalendarID: calendarID,
				Title:      event.Summary,
				FoundStart: event.Start,
			}
		}
	}

	return MatchResult{Outcome: OutcomeMiss}
}

// containsClientID is the sole linkage between an appointment and its
// calendar event: the numeric client id appears somewhere in the event
// description.
func containsClientID(description, clientID string) bool {
	return clientID != "" && strings.Contains(description, clientID)
}
