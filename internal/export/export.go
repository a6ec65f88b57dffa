// Package export reads the practice-management appointment export. The
// scraping layer that produces the CSV is an external collaborator; this
// package only turns its rows into records.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"clinic_sync_backend/internal/appointments"
	"clinic_sync_backend/platform/apperr"
	"clinic_sync_backend/platform/logger"
)

// Archiver stores a snapshot of the raw export for audit. Optional.
type Archiver interface {
	ArchiveExport(ctx context.Context, name string, data []byte) error
}

// Loader reads the export CSV from disk. It implements
// appointments.Source.
type Loader struct {
	path     string
	archiver Archiver
	log      *logger.Logger
}

func NewLoader(path string, archiver Archiver, log *logger.Logger) *Loader {
	return &Loader{path: path, archiver: archiver, log: log}
}

// Column names as produced by the practice-management export.
const (
	colAppointmentID = "APPOINTMENT_ID"
	colClientID      = "CLIENT_ID"
	colNPI           = "NPI"
	colStartTime     = "STARTTIME"
	colEndTime       = "ENDTIME"
	colName          = "NAME"
	colCancelBy      = "CANCELBYNAME"
)

var requiredColumns = []string{
	colAppointmentID, colClientID, colStartTime, colEndTime, colName,
}

// Load reads and parses the export. A missing required column is a fatal
// schema error. Rows missing a parseable client id or start time are
// skipped with a warning; the rest of the batch still processes. When an
// archiver is configured the raw bytes are stored first, so even a run that
// fails to parse leaves an auditable snapshot.
func (l *Loader) Load(ctx context.Context) ([]appointments.Record, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "read appointment export", err)
	}

	if l.archiver != nil {
		if err := l.archiver.ArchiveExport(ctx, time.Now().Format("2006-01-02"), data); err != nil {
			l.log.Warn("failed to archive export snapshot", "error", err)
		}
	}

	return Parse(data, l.log)
}

// Parse decodes export CSV bytes into records, preserving row order.
func Parse(data []byte, log *logger.Logger) ([]appointments.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "read export header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, apperr.Validation(fmt.Sprintf("export is missing required column %s", required))
		}
	}

	var records []appointments.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("read export line %d", line), err)
		}

		rec, ok := parseRow(row, columns, log, line)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string, columns map[string]int, log *logger.Logger, line int) (appointments.Record, bool) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	externalID := field(colAppointmentID)
	if externalID == "" {
		log.Warn("skipping export row without appointment id", "line", line)
		return appointments.Record{}, false
	}

	clientID, err := strconv.ParseInt(field(colClientID), 10, 64)
	if err != nil {
		log.Warn("skipping export row with invalid client id", "line", line, "appointment_id", externalID)
		return appointments.Record{}, false
	}

	start, err := parseExportTime(field(colStartTime))
	if err != nil {
		log.Warn("skipping export row with invalid start time", "line", line, "appointment_id", externalID)
		return appointments.Record{}, false
	}

	end, err := parseExportTime(field(colEndTime))
	if err != nil {
		end = start
	}

	rec := appointments.Record{
		ExternalID:  externalID,
		ClientID:    clientID,
		Start:       start,
		End:         end,
		NameText:    field(colName),
		CancelledBy: field(colCancelBy),
	}

	if raw := field(colNPI); raw != "" {
		if npi, err := strconv.ParseInt(raw, 10, 64); err == nil {
			rec.ClaimedNPI = &npi
		}
	}

	return rec, true
}

// parseExportTime accepts the timestamp shapes the export has been observed
// to emit. All are treated as timezone-naive wall-clock times.
func parseExportTime(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"1/2/2006 3:04 PM",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
