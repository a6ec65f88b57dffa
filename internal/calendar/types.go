package calendar

import "time"

// Event is one calendar event as returned by the external calendar service.
// Start is timezone-naive: the service reports wall-clock time in the
// clinic's zone and day-bucketing must not shift across midnight.
type Event struct {
	ID          string
	CalendarID  string
	Start       time.Time
	Summary     string
	Description string
}

// Day is a timezone-naive calendar day key, formatted YYYY-MM-DD.
type Day string

// DayOf returns the Day bucket for a timestamp.
func DayOf(t time.Time) Day {
	return Day(t.Format("2006-01-02"))
}

type eventList struct {
	Items         []eventItem `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

type eventItem struct {
	ID          string     `json:"id"`
	Start       eventStart `json:"start"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
}

// eventStart carries either a dateTime (timed event) or a date (all-day).
type eventStart struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}
