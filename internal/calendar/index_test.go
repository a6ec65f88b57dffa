package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic_sync_backend/platform/logger"
)

type fakeLister struct {
	events map[string][]Event
	fail   map[string]bool
	ranges map[string][2]time.Time
}

func (l *fakeLister) ListEvents(_ context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	if l.ranges != nil {
		l.ranges[calendarID] = [2]time.Time{from, to}
	}
	if l.fail[calendarID] {
		return nil, errors.New("calendar unavailable")
	}
	return l.events[calendarID], nil
}

func day(d int, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestBuildIndex_BucketsEventsPerCalendarPerDay(t *testing.T) {
	lister := &fakeLister{events: map[string][]Event{
		"cal-b": {
			{ID: "b1", Start: day(16, 9)},
			{ID: "b2", Start: day(16, 14)},
			{ID: "b3", Start: day(17, 9)},
		},
		"cal-a": {
			{ID: "a1", Start: day(16, 10)},
		},
	}}

	idx := BuildIndex(context.Background(), lister, []string{"cal-b", "cal-a"}, day(16, 0), day(17, 0), 2, logger.New("test"))

	ids := idx.CalendarIDs()
	if len(ids) != 2 || ids[0] != "cal-a" || ids[1] != "cal-b" {
		t.Fatalf("expected lexical calendar order, got %v", ids)
	}

	if got := idx.Bucket("cal-b", DayOf(day(16, 0))); len(got) != 2 {
		t.Fatalf("expected 2 events on cal-b 03-16, got %d", len(got))
	}
	if got := idx.Bucket("cal-b", DayOf(day(17, 0))); len(got) != 1 {
		t.Fatalf("expected 1 event on cal-b 03-17, got %d", len(got))
	}
	if got := idx.Bucket("cal-a", DayOf(day(17, 0))); len(got) != 0 {
		t.Fatalf("expected no events on cal-a 03-17, got %d", len(got))
	}

	// Every fetched event is reachable through some bucket.
	if got := len(idx.Events()); got != 4 {
		t.Fatalf("expected 4 events in the index, got %d", got)
	}
}

func TestBuildIndex_PadsFetchRangeByOneDay(t *testing.T) {
	lister := &fakeLister{ranges: map[string][2]time.Time{}, events: map[string][]Event{"cal-a": {}}}

	BuildIndex(context.Background(), lister, []string{"cal-a"}, day(16, 0), day(20, 0), 1, logger.New("test"))

	r, ok := lister.ranges["cal-a"]
	if !ok {
		t.Fatalf("expected cal-a to be fetched")
	}
	if !r[0].Equal(day(15, 0)) || !r[1].Equal(day(21, 0)) {
		t.Fatalf("expected padded range 03-15..03-21, got %v..%v", r[0], r[1])
	}
}

func TestBuildIndex_EmptyCalendarRemainsIndexed(t *testing.T) {
	// A successful fetch with zero events is not a failure: the calendar
	// stays in the index so a partial index is only ever about failed
	// fetches.
	lister := &fakeLister{events: map[string][]Event{"cal-empty": nil}}

	idx := BuildIndex(context.Background(), lister, []string{"cal-empty"}, day(16, 0), day(16, 0), 1, logger.New("test"))

	ids := idx.CalendarIDs()
	if len(ids) != 1 || ids[0] != "cal-empty" {
		t.Fatalf("expected the empty calendar in the index, got %v", ids)
	}
	if got := idx.Bucket("cal-empty", DayOf(day(16, 0))); len(got) != 0 {
		t.Fatalf("expected no events for the empty calendar, got %d", len(got))
	}
}

func TestBuildIndex_FailedCalendarIsSkippedNotFatal(t *testing.T) {
	lister := &fakeLister{
		events: map[string][]Event{
			"cal-a": {{ID: "a1", Start: day(16, 9)}},
		},
		fail: map[string]bool{"cal-broken": true},
	}

	idx := BuildIndex(context.Background(), lister, []string{"cal-a", "cal-broken"}, day(16, 0), day(16, 0), 2, logger.New("test"))

	ids := idx.CalendarIDs()
	if len(ids) != 1 || ids[0] != "cal-a" {
		t.Fatalf("expected only the healthy calendar in the index, got %v", ids)
	}
}
