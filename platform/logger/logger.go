// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRun returns a logger carrying the sync run identifier.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("run_id", runID)),
	}
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// CalendarError logs a failed calendar service call. A calendar that cannot
// be fetched is skipped for the run, so this is a warning, not fatal.
func (l *Logger) CalendarError(calendarID string, err error) {
	l.Warn("calendar_error",
		slog.String("calendar_id", calendarID),
		slog.String("error", err.Error()),
	)
}

// SyncSummary logs the end-of-run counters for a reconciliation batch.
func (l *Logger) SyncSummary(total, matched, mismatched, missing, persisted int) {
	l.Info("sync_summary",
		slog.Int("total", total),
		slog.Int("matched", matched),
		slog.Int("time_mismatches", mismatched),
		slog.Int("missing_in_calendar", missing),
		slog.Int("persisted", persisted),
	)
}
