package appointments

import (
	"context"
	"fmt"
	"time"

	"clinic_sync_backend/internal/appointments/repository"
	"clinic_sync_backend/internal/calendar"
	"clinic_sync_backend/internal/email"
	"clinic_sync_backend/internal/policy"
	"clinic_sync_backend/platform/logger"

	"github.com/google/uuid"
)

// Source loads the appointment export for a run.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// Store persists reconciled appointments and resolves evaluator identity.
type Store interface {
	Upsert(ctx context.Context, p repository.UpsertParams) error
	EvaluatorCalendars(ctx context.Context) (map[string]int64, error)
	EvaluatorNames(ctx context.Context) (map[int64]string, error)
}

// Stats summarizes one reconciliation run.
type Stats struct {
	Total          int
	Surviving      int
	Matched        int
	TimeMismatches int
	Missing        int
	Persisted      int
}

// Service orchestrates one reconciliation run: filter the export, build the
// calendar index, match, apply overrides, parse titles, persist, report.
type Service struct {
	source      Source
	store       Store
	lister      calendar.Lister
	sender      email.Sender
	pol         policy.Policy
	recipient   string
	concurrency int
	log         *logger.Logger
	now         func() time.Time
}

func NewService(source Source, store Store, lister calendar.Lister, sender email.Sender, pol policy.Policy, recipient string, concurrency int, log *logger.Logger) *Service {
	return &Service{
		source:      source,
		store:       store,
		lister:      lister,
		sender:      sender,
		pol:         pol,
		recipient:   recipient,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

// Run executes one batch. Per-row persistence failures are logged and the
// run continues: upserts are keyed by the stable external identifier, so the
// next run reconciles whatever this one missed. Only loading the export or
// the evaluator tables is fatal, since nothing has been written yet.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	now := s.now()
	log := s.log.WithRun(uuid.NewString())

	records, err := s.source.Load(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(records)}
	overrides := NewOverrides(s.pol.TrustedAppointmentIDs, s.pol.IgnoredAppointmentIDs)

	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if overrides.IsIgnored(rec.ExternalID) {
			log.Info("skipping ignored appointment", "appointment_id", rec.ExternalID)
			continue
		}
		kept = append(kept, rec)
	}

	rows := NewFilter(s.pol, now, log).Apply(kept)
	stats.Surviving = len(rows)

	if len(rows) == 0 {
		log.Info("no valid appointments in the processing window")
		return stats, nil
	}

	calendars, err := s.store.EvaluatorCalendars(ctx)
	if err != nil {
		return stats, err
	}
	names, err := s.store.EvaluatorNames(ctx)
	if err != nil {
		return stats, err
	}

	calendarIDs := make([]string, 0, len(calendars))
	for calendarID := range calendars {
		calendarIDs = append(calendarIDs, calendarID)
	}

	from, to := startTimeRange(rows)
	log.Info("building calendar index",
		"calendars", len(calendarIDs),
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
	)
	idx := calendar.BuildIndex(ctx, s.lister, calendarIDs, from, to, s.concurrency, log)

	matcher := NewMatcher(s.pol.TimeTolerance())
	reporter := NewReporter()

	for _, rec := range rows {
		result := matcher.Match(rec, idx)

		switch result.Outcome {
		case OutcomeMatched:
			stats.Matched++
		case OutcomeTimeMismatch:
			stats.TimeMismatches++
			reporter.TimeMismatch(TimeMismatch{
				AppointmentID: rec.ExternalID,
				ClientName:    rec.ClientName(),
				ClientID:      rec.ClientID,
				FoundTime:     result.FoundStart,
				ExpectedTime:  rec.Start,
			})
		case OutcomeMiss:
			stats.Missing++
			reporter.MissingInCalendar(MissingAppointment{
				AppointmentID: rec.ExternalID,
				Name:          rec.ClientName(),
				ClientID:      rec.ClientID,
				ExpectedTime:  rec.Start,
				EvaluatorName: claimedEvaluatorName(rec, names),
			})
		}

		params, ok := s.resolve(log, rec, result, overrides, calendars, reporter)
		if !ok {
			continue
		}

		if err := s.store.Upsert(ctx, params); err != nil {
			log.DatabaseError("upsert appointment", err)
			continue
		}
		stats.Persisted++
	}

	if err := reporter.Dispatch(ctx, s.sender, s.recipient, now); err != nil {
		log.Error("failed to send sync report", "error", err)
	}

	log.SyncSummary(stats.Total, stats.Matched, stats.TimeMismatches, stats.Missing, stats.Persisted)
	return stats, nil
}

// resolve turns a match verdict into upsert parameters, or reports why the
// row cannot be persisted.
func (s *Service) resolve(log *logger.Logger, rec Record, result MatchResult, overrides Overrides, calendars map[string]int64, reporter *Reporter) (repository.UpsertParams, bool) {
	switch overrides.Resolve(rec, result) {
	case ActionKeepMatched:
		npi, known := calendars[result.CalendarID]
		if !known {
			log.Error("no evaluator credential for calendar", "calendar_id", result.CalendarID)
			reporter.UnresolvedCalendar(result.CalendarID)
			return repository.UpsertParams{}, false
		}

		location, visit := ParseTitle(result.Title)
		eventID := result.EventID

		return repository.UpsertParams{
			ExternalID:      rec.ExternalID,
			ClientID:        rec.ClientID,
			EvaluatorNPI:    npi,
			Start:           rec.Start,
			End:             rec.End,
			Cancelled:       rec.Cancelled(),
			Location:        location,
			VisitType:       visitTypeString(visit),
			CalendarEventID: &eventID,
		}, true

	case ActionKeepClaimed:
		log.Warn("trusting export for appointment despite calendar outcome",
			"appointment_id", rec.ExternalID,
			"client_id", rec.ClientID,
		)
		return repository.UpsertParams{
			ExternalID:   rec.ExternalID,
			ClientID:     rec.ClientID,
			EvaluatorNPI: *rec.ClaimedNPI,
			Start:        rec.Start,
			End:          rec.End,
			Cancelled:    rec.Cancelled(),
		}, true

	default:
		return repository.UpsertParams{}, false
	}
}

func visitTypeString(v *VisitType) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func claimedEvaluatorName(rec Record, names map[int64]string) string {
	if rec.ClaimedNPI == nil {
		return "Unknown NPI (none)"
	}
	if name, ok := names[*rec.ClaimedNPI]; ok {
		return name
	}
	return fmt.Sprintf("Unknown NPI (%d)", *rec.ClaimedNPI)
}

func startTimeRange(rows []Record) (from, to time.Time) {
	from, to = rows[0].Start, rows[0].Start
	for _, rec := range rows[1:] {
		if rec.Start.Before(from) {
			from = rec.Start
		}
		if rec.Start.After(to) {
			to = rec.Start
		}
	}
	return from, to
}
