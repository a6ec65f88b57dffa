// Package repository persists reconciled appointments and exposes the
// evaluator identity lookups the engine needs.
package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertParams carries one reconciled appointment. Location, VisitType, and
// CalendarEventID are upgrade-only: nil means "unknown this run" and must
// not erase a previously resolved value.
type UpsertParams struct {
	ExternalID      string
	ClientID        int64
	EvaluatorNPI    int64
	Start           time.Time
	End             time.Time
	Cancelled       bool
	Location        *string
	VisitType       *string
	CalendarEventID *string
}

// Upsert writes one appointment keyed by its external identifier. Core
// schedule fields are always overwritten; the nullable calendar-derived
// fields only replace a stored value when the incoming one is non-null, so
// a run with the calendar unavailable cannot clobber resolved data.
func (r *Repository) Upsert(ctx context.Context, p UpsertParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO emr_appointment (
			external_id, client_id, evaluator_npi, start_time, end_time,
			cancelled, location, visit_type, calendar_event_id, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (external_id) DO UPDATE SET
			client_id         = EXCLUDED.client_id,
			evaluator_npi     = EXCLUDED.evaluator_npi,
			start_time        = EXCLUDED.start_time,
			end_time          = EXCLUDED.end_time,
			cancelled         = EXCLUDED.cancelled,
			location          = COALESCE(EXCLUDED.location, emr_appointment.location),
			visit_type        = COALESCE(EXCLUDED.visit_type, emr_appointment.visit_type),
			calendar_event_id = COALESCE(EXCLUDED.calendar_event_id, emr_appointment.calendar_event_id),
			updated_at        = now()
	`, p.ExternalID, p.ClientID, p.EvaluatorNPI, p.Start, p.End,
		p.Cancelled, p.Location, p.VisitType, p.CalendarEventID)
	return err
}

// EvaluatorCalendars returns the calendar id to evaluator NPI mapping.
// Calendar ids map 1:1 to an evaluator's external mailbox identity.
func (r *Repository) EvaluatorCalendars(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT calendar_id, npi
		FROM emr_evaluator
		WHERE calendar_id IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calendars := make(map[string]int64)
	for rows.Next() {
		var calendarID string
		var npi int64
		if err := rows.Scan(&calendarID, &npi); err != nil {
			return nil, err
		}
		calendars[calendarID] = npi
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return calendars, nil
}

// EvaluatorNames returns the NPI to display-name mapping used in failure
// reports.
func (r *Repository) EvaluatorNames(ctx context.Context) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT npi, provider_name
		FROM emr_evaluator
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var npi int64
		var name string
		if err := rows.Scan(&npi, &name); err != nil {
			return nil, err
		}
		names[npi] = name
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return names, nil
}
