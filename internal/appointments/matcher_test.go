package appointments

import (
	"context"
	"testing"
	"time"

	"clinic_sync_backend/internal/calendar"
	"clinic_sync_backend/platform/logger"
)

type staticLister struct {
	events map[string][]calendar.Event
}

func (l *staticLister) ListEvents(_ context.Context, calendarID string, _, _ time.Time) ([]calendar.Event, error) {
	return l.events[calendarID], nil
}

func buildTestIndex(t *testing.T, events map[string][]calendar.Event) *calendar.Index {
	t.Helper()

	ids := make([]string, 0, len(events))
	for id := range events {
		ids = append(ids, id)
	}

	from := testTime(1, 0)
	to := testTime(28, 0)
	return calendar.BuildIndex(context.Background(), &staticLister{events: events}, ids, from, to, 2, logger.New("test"))
}

func TestMatcher_MatchesEventWithinTolerance(t *testing.T) {
	idx := buildTestIndex(t, map[string][]calendar.Event{
		"cal-a": {
			{ID: "ev1", CalendarID: "cal-a", Start: testTime(16, 9).Add(10 * time.Minute), Summary: "[COL-E] Jane", Description: "client 4521 eval"},
		},
	})

	rec := Record{ExternalID: "a1", ClientID: 4521, Start: testTime(16, 9)}
	result := NewMatcher(time.Hour).Match(rec, idx)

	if result.Outcome != OutcomeMatched {
		t.Fatalf("expected match, got outcome %d", result.Outcome)
	}
	if result.EventID != "ev1" || result.CalendarID != "cal-a" {
		t.Fatalf("unexpected match target: %s on %s", result.EventID, result.CalendarID)
	}
}

func TestMatcher_TimeMismatchStopsSearch(t *testing.T) {
	// cal-a holds the client at the wrong time; cal-b holds a perfect match.
	// Lexical calendar order reaches cal-a first and the verdict is final.
	idx := buildTestIndex(t, map[string][]calendar.Event{
		"cal-a": {
			{ID: "wrong", CalendarID: "cal-a", Start: testTime(16, 9).Add(135 * time.Minute), Summary: "Jane", Description: "client 4521"},
		},
		"cal-b": {
			{ID: "right", CalendarID: "cal-b", Start: testTime(16, 9), Summary: "Jane", Description: "client 4521"},
		},
	})

	rec := Record{ExternalID: "a1", ClientID: 4521, Start: testTime(16, 9)}
	result := NewMatcher(time.Hour).Match(rec, idx)

	if result.Outcome != OutcomeTimeMismatch {
		t.Fatalf("expected time mismatch, got outcome %d", result.Outcome)
	}
	if result.EventID != "wrong" {
		t.Fatalf("expected the first candidate to end the search, got %s", result.EventID)
	}
}

func TestMatcher_MissWhenNoCalendarHoldsClient(t *testing.T) {
	idx := buildTestIndex(t, map[string][]calendar.Event{
		"cal-a": {
			{ID: "ev1", CalendarID: "cal-a", Start: testTime(16, 9), Summary: "Other", Description: "client 9999"},
		},
	})

	rec := Record{ExternalID: "a1", ClientID: 4521, Start: testTime(16, 9)}
	result := NewMatcher(time.Hour).Match(rec, idx)

	if result.Outcome != OutcomeMiss {
		t.Fatalf("expected miss, got outcome %d", result.Outcome)
	}
}

func TestMatcher_VerdictIsDeterministic(t *testing.T) {
	idx := buildTestIndex(t, map[string][]calendar.Event{
		"cal-b": {
			{ID: "ev-b", CalendarID: "cal-b", Start: testTime(16, 9), Summary: "B", Description: "4521"},
		},
		"cal-a": {
			{ID: "ev-a", CalendarID: "cal-a", Start: testTime(16, 9), Summary: "A", Description: "4521"},
		},
	})

	rec := Record{ExternalID: "a1", ClientID: 4521, Start: testTime(16, 9)}
	matcher := NewMatcher(time.Hour)

	first := matcher.Match(rec, idx)
	for i := 0; i < 5; i++ {
		again := matcher.Match(rec, idx)
		if again != first {
			t.Fatalf("verdict changed between calls: %+v vs %+v", first, again)
		}
	}

	// Lexical order fixes the tie-break to the lowest calendar id.
	if first.CalendarID != "cal-a" {
		t.Fatalf("expected cal-a to win the tie-break, got %s", first.CalendarID)
	}
}
