package calendar

import (
	"context"
	"sort"
	"time"

	"clinic_sync_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Lister abstracts the calendar service for the index builder.
type Lister interface {
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error)
}

// Index groups fetched events by calendar and by naive calendar day, so that
// matching N appointments against M calendars costs M list calls up front and
// O(1) in-memory lookups after, instead of one list call per appointment.
type Index struct {
	calendarIDs []string
	buckets     map[string]map[Day][]Event
}

// CalendarIDs returns the indexed calendar identifiers in lexical order.
// Matching iterates calendars in this order, which fixes the tie-break when
// more than one calendar holds a plausible event for the same appointment.
func (idx *Index) CalendarIDs() []string {
	return idx.calendarIDs
}

// Bucket returns the events of one calendar on one day.
func (idx *Index) Bucket(calendarID string, day Day) []Event {
	days, ok := idx.buckets[calendarID]
	if !ok {
		return nil
	}
	return days[day]
}

// Events returns all indexed events, in no particular order.
func (idx *Index) Events() []Event {
	var all []Event
	for _, days := range idx.buckets {
		for _, events := range days {
			all = append(all, events...)
		}
	}
	return all
}

// BuildIndex fetches all events for the given calendars within
// [from - 1 day, to + 1 day] and buckets them per calendar per day. The
// padding absorbs timezone shifts around midnight. Calendars are fetched
// concurrently; a calendar whose fetch fails is logged and left out of the
// index rather than failing the run.
func BuildIndex(ctx context.Context, lister Lister, calendarIDs []string, from, to time.Time, concurrency int, log *logger.Logger) *Index {
	ids := make([]string, len(calendarIDs))
	copy(ids, calendarIDs)
	sort.Strings(ids)

	searchFrom := from.AddDate(0, 0, -1)
	searchTo := to.AddDate(0, 0, 1)

	if concurrency < 1 {
		concurrency = 1
	}

	fetched := make([][]Event, len(ids))
	succeeded := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			events, err := lister.ListEvents(gctx, id, searchFrom, searchTo)
			if err != nil {
				log.CalendarError(id, err)
				return nil
			}
			fetched[i] = events
			succeeded[i] = true
			return nil
		})
	}

	// Goroutines only return nil; Wait is for completion, not errors.
	_ = g.Wait()

	idx := &Index{
		calendarIDs: make([]string, 0, len(ids)),
		buckets:     make(map[string]map[Day][]Event, len(ids)),
	}

	// A calendar that fetched successfully stays in the index even with zero
	// events; only a failed fetch is left out.
	for i, id := range ids {
		if !succeeded[i] {
			continue
		}
		days := make(map[Day][]Event)
		for _, event := range fetched[i] {
			day := DayOf(event.Start)
			days[day] = append(days[day], event)
		}
		idx.calendarIDs = append(idx.calendarIDs, id)
		idx.buckets[id] = days
	}

	return idx
}
