// Package csvio reads and writes the delimited tabular formats the
// pipeline exchanges with its collaborators: one observations file per
// day, a 24-row hourly summary file and a single-row daily summary
// file. Null numeric fields are empty, never the literal zero.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/banshee-data/activity.report/internal/fsutil"
	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/insect/activity"
)

// ObservationHeader is the column order of a daily observations file,
// matching the ObservationRecord field names.
var ObservationHeader = []string{
	"timestamp", "sequence", "detection_count", "detected",
	"center_x", "center_y", "mean_confidence", "max_confidence",
	"box_area", "process_time_ms",
}

// WriteObservations writes one day of records to w.
func WriteObservations(w io.Writer, records []insect.ObservationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ObservationHeader); err != nil {
		return &insect.PersistenceError{Op: "write observations header", Err: err}
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Format(time.RFC3339),
			strconv.FormatInt(r.Sequence, 10),
			strconv.Itoa(r.DetectionCount),
			strconv.FormatBool(r.Detected),
			formatNullable(r.CenterX, 3),
			formatNullable(r.CenterY, 3),
			formatNullable(r.MeanConfidence, 4),
			formatNullable(r.MaxConfidence, 4),
			formatNullable(r.BoxArea, 3),
			strconv.FormatFloat(r.ProcessTimeMs, 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return &insect.PersistenceError{Op: "write observation row", Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &insect.PersistenceError{Op: "flush observations", Err: err}
	}
	return nil
}

// WriteObservationsFile writes records to path on fs.
func WriteObservationsFile(fs fsutil.FileSystem, path string, records []insect.ObservationRecord) error {
	f, err := fs.Create(path)
	if err != nil {
		return &insect.PersistenceError{Op: "create " + path, Err: err}
	}
	if err := WriteObservations(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &insect.PersistenceError{Op: "close " + path, Err: err}
	}
	return nil
}

// ReadObservations parses a daily observations file. Malformed rows are
// skipped with a diagnostic so one bad line cannot lose the day.
func ReadObservations(r io.Reader) ([]insect.ObservationRecord, []insect.Diagnostic, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ObservationHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, nil, &insect.PersistenceError{Op: "read observations header", Err: err}
	}
	if header[0] != "timestamp" {
		return nil, nil, &insect.PersistenceError{Op: "read observations header",
			Err: fmt.Errorf("unexpected first column %q", header[0])}
	}

	var records []insect.ObservationRecord
	var diags []insect.Diagnostic
	line := 1
	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			diags = append(diags, insect.Errorf("csvio", "line %d unreadable: %v", line, err))
			continue
		}
		rec, err := parseObservation(row)
		if err != nil {
			diags = append(diags, insect.Errorf("csvio", "line %d rejected: %v", line, err))
			continue
		}
		records = append(records, rec)
	}
	return records, diags, nil
}

// ReadObservationsFile parses the daily observations file at path on fs.
func ReadObservationsFile(fs fsutil.FileSystem, path string) ([]insect.ObservationRecord, []insect.Diagnostic, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, nil, &insect.PersistenceError{Op: "open " + path, Err: err}
	}
	defer f.Close()
	return ReadObservations(f)
}

func parseObservation(row []string) (insect.ObservationRecord, error) {
	var rec insect.ObservationRecord

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return rec, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}
	rec.Timestamp = ts

	if rec.Sequence, err = strconv.ParseInt(row[1], 10, 64); err != nil {
		return rec, fmt.Errorf("bad sequence %q: %w", row[1], err)
	}
	if rec.DetectionCount, err = strconv.Atoi(row[2]); err != nil {
		return rec, fmt.Errorf("bad detection_count %q: %w", row[2], err)
	}
	if rec.Detected, err = strconv.ParseBool(row[3]); err != nil {
		return rec, fmt.Errorf("bad detected %q: %w", row[3], err)
	}
	if rec.CenterX, err = parseNullable(row[4]); err != nil {
		return rec, fmt.Errorf("bad center_x %q: %w", row[4], err)
	}
	if rec.CenterY, err = parseNullable(row[5]); err != nil {
		return rec, fmt.Errorf("bad center_y %q: %w", row[5], err)
	}
	if rec.MeanConfidence, err = parseNullable(row[6]); err != nil {
		return rec, fmt.Errorf("bad mean_confidence %q: %w", row[6], err)
	}
	if rec.MaxConfidence, err = parseNullable(row[7]); err != nil {
		return rec, fmt.Errorf("bad max_confidence %q: %w", row[7], err)
	}
	if rec.BoxArea, err = parseNullable(row[8]); err != nil {
		return rec, fmt.Errorf("bad box_area %q: %w", row[8], err)
	}
	if row[9] != "" {
		if rec.ProcessTimeMs, err = strconv.ParseFloat(row[9], 64); err != nil {
			return rec, fmt.Errorf("bad process_time_ms %q: %w", row[9], err)
		}
	}
	return rec, nil
}

func formatNullable(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func parseNullable(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// HourlyHeader is the column order of an hourly summary file.
var HourlyHeader = []string{
	"date", "hour", "observations", "detections",
	"movement_px", "mean_confidence", "max_confidence",
}

// WriteHourlySummaries writes the 24 hourly rows for a day.
func WriteHourlySummaries(w io.Writer, hours []activity.HourlySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HourlyHeader); err != nil {
		return &insect.PersistenceError{Op: "write hourly header", Err: err}
	}
	for _, h := range hours {
		row := []string{
			h.Date,
			strconv.Itoa(h.Hour),
			strconv.Itoa(h.Observations),
			strconv.Itoa(h.Detections),
			strconv.FormatFloat(h.MovementPx, 'f', 3, 64),
			strconv.FormatFloat(h.MeanConfidence, 'f', 4, 64),
			strconv.FormatFloat(h.MaxConfidence, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return &insect.PersistenceError{Op: "write hourly row", Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &insect.PersistenceError{Op: "flush hourly summaries", Err: err}
	}
	return nil
}

// DailyHeader is the column order of a daily summary file.
var DailyHeader = []string{
	"date", "total_detections", "total_movement_px", "avg_movement_px",
	"peak_hour", "active_minutes", "reliability", "completeness",
}

// WriteDailySummary writes the single daily summary row.
func WriteDailySummary(w io.Writer, daily activity.DailySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DailyHeader); err != nil {
		return &insect.PersistenceError{Op: "write daily header", Err: err}
	}
	m := daily.Metrics
	row := []string{
		daily.Date,
		strconv.Itoa(m.TotalDetections),
		strconv.FormatFloat(m.TotalMovementPx, 'f', 3, 64),
		strconv.FormatFloat(m.AvgMovementPerDetect, 'f', 3, 64),
		strconv.Itoa(m.PeakActivityHour),
		strconv.FormatFloat(m.ActiveDurationMinutes, 'f', 1, 64),
		strconv.FormatFloat(m.DetectionReliability, 'f', 4, 64),
		strconv.FormatFloat(m.DataCompleteness, 'f', 4, 64),
	}
	if err := cw.Write(row); err != nil {
		return &insect.PersistenceError{Op: "write daily row", Err: err}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &insect.PersistenceError{Op: "flush daily summary", Err: err}
	}
	return nil
}

// DayFilename returns the canonical observations filename for a day.
func DayFilename(day time.Time) string {
	return fmt.Sprintf("observations_%s.csv", day.Format("2006-01-02"))
}
