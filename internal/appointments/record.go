// Package appointments implements the appointment reconciliation engine:
// filtering the practice-management export, matching rows against calendar
// events, resolving evaluator identity, and persisting the result.
package appointments

import (
	"regexp"
	"strings"
	"time"
)

// Record is one appointment row from the practice-management export. Rows
// are read fresh every run and never mutated; a new export supersedes them.
type Record struct {
	// ExternalID is the export's stable appointment identifier and the
	// natural key for persistence.
	ExternalID string

	ClientID int64

	// ClaimedNPI is the evaluator the export claims ran the appointment.
	// Only trusted rows fall back to it; the calendar is the ground truth.
	ClaimedNPI *int64

	Start time.Time
	End   time.Time

	// NameText is the export's free-text name field. It embeds the client
	// name, a billing code, and parenthetical annotations.
	NameText string

	// CancelledBy is non-empty when the appointment was cancelled.
	CancelledBy string
}

// Cancelled reports whether the row carries a cancellation marker.
func (r Record) Cancelled() bool {
	return strings.TrimSpace(r.CancelledBy) != ""
}

var (
	nonNameChars = regexp.MustCompile(`[\d()]`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// ClientName strips digits and parentheses from the name field, leaving the
// human-readable client name.
func (r Record) ClientName() string {
	return strings.TrimSpace(nonNameChars.ReplaceAllString(r.NameText, ""))
}

// BillingCode returns the numeric substring of the name field, which embeds
// the row's billing code by export convention.
func (r Record) BillingCode() string {
	return nonDigits.ReplaceAllString(r.NameText, "")
}
