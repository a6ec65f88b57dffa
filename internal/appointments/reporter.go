package appointments

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"clinic_sync_backend/internal/email"
)

// TimeMismatch records an event that carried the right client identifier at
// the wrong time.
type TimeMismatch struct {
	AppointmentID string
	ClientName    string
	ClientID      int64
	FoundTime     time.Time
	ExpectedTime  time.Time
}

// MissingAppointment records a row not found on any calendar.
type MissingAppointment struct {
	AppointmentID string
	Name          string
	ClientID      int64
	ExpectedTime  time.Time
	EvaluatorName string
}

// Reporter accumulates reconciliation failures across the whole batch and
// renders one consolidated notification, so a run produces at most one
// alert instead of one per row.
type Reporter struct {
	mismatches          []TimeMismatch
	missing             []MissingAppointment
	unresolvedCalendars []string
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) TimeMismatch(m TimeMismatch) {
	r.mismatches = append(r.mismatches, m)
}

func (r *Reporter) MissingInCalendar(m MissingAppointment) {
	r.missing = append(r.missing, m)
}

// UnresolvedCalendar records a matched calendar that could not be mapped to
// a known evaluator credential.
func (r *Reporter) UnresolvedCalendar(calendarID string) {
	r.unresolvedCalendars = append(r.unresolvedCalendars, calendarID)
}

func (r *Reporter) HasFindings() bool {
	return len(r.mismatches) > 0 || len(r.missing) > 0 || len(r.unresolvedCalendars) > 0
}

// Counts returns the accumulated totals per category.
func (r *Reporter) Counts() (mismatches, missing, unresolved int) {
	return len(r.mismatches), len(r.missing), len(r.unresolvedCalendars)
}

const reportTimeLayout = "01/02 03:04 PM"

// Render produces the notification subject, plain-text summary, and
// structured HTML detail.
func (r *Reporter) Render(runDate time.Time) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("Appointment Sync Errors - %s", runDate.Format("2006-01-02"))
	text = "Errors were detected during the appointment sync."

	var b strings.Builder

	if len(r.unresolvedCalendars) > 0 {
		b.WriteString("<h3>Unresolved Evaluator Calendars</h3>")
		b.WriteString("<p>The following calendars have no evaluator credential mapping:</p><ul>")
		for _, calendarID := range r.unresolvedCalendars {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(calendarID))
		}
		b.WriteString("</ul>")
	}

	if len(r.missing) > 0 {
		b.WriteString("<h3>Appointments Missing in Calendar</h3>")
		b.WriteString("<p>These appointments are in the export but not found on any calendar:</p><ul>")
		for _, m := range r.missing {
			fmt.Fprintf(&b, "<li><b>%s</b> (ID: %d) @ %s<br>&nbsp;&nbsp;<i>Expected Evaluator: %s</i><br>&nbsp;&nbsp;<i>Appt ID: %s</i></li>",
				html.EscapeString(m.Name),
				m.ClientID,
				m.ExpectedTime.Format(reportTimeLayout),
				html.EscapeString(m.EvaluatorName),
				html.EscapeString(m.AppointmentID),
			)
		}
		b.WriteString("</ul>")
	}

	if len(r.mismatches) > 0 {
		b.WriteString("<h3>Time Mismatches</h3>")
		b.WriteString("<p>The export start time differs significantly from the calendar start time:</p><ul>")
		for _, m := range r.mismatches {
			fmt.Fprintf(&b, "<li><b>%s</b> (ID: %d): calendar has %s, export has %s (Appt ID: %s)</li>",
				html.EscapeString(m.ClientName),
				m.ClientID,
				m.FoundTime.Format(reportTimeLayout),
				m.ExpectedTime.Format(reportTimeLayout),
				html.EscapeString(m.AppointmentID),
			)
		}
		b.WriteString("</ul>")
	}

	b.WriteString("<p>This email was generated and sent automatically.</p>")

	return subject, text, b.String()
}

// Dispatch sends the consolidated report to the configured recipient, or
// nothing when the run had no findings.
func (r *Reporter) Dispatch(ctx context.Context, sender email.Sender, recipient string, runDate time.Time) error {
	if !r.HasFindings() {
		return nil
	}

	subject, text, htmlBody := r.Render(runDate)
	return sender.Send(ctx, subject, text, htmlBody, recipient)
}
