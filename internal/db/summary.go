package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/banshee-data/activity.report/internal/insect/activity"
	"github.com/banshee-data/activity.report/internal/insect/pipeline"
)

// SaveRunResult replaces the day's summary rows with the given run's
// output in one transaction, so a failed run never leaves partial
// summaries behind. Delete-then-insert keeps repeated rollups of the
// same day idempotent.
func (db *DB) SaveRunResult(ctx context.Context, res *pipeline.Result) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			log.Printf("warning: failed to rollback transaction: %v", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM hourly_summaries WHERE date = ?`, res.Date); err != nil {
		return fmt.Errorf("failed to clear hourly summaries: %w", err)
	}
	for _, h := range res.Daily.Hours {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hourly_summaries (
				date, hour, observations, detections,
				movement_px, mean_confidence, max_confidence
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.Date, h.Hour, h.Observations, h.Detections,
			h.MovementPx, h.MeanConfidence, h.MaxConfidence,
		); err != nil {
			return fmt.Errorf("failed to insert hourly summary %d: %w", h.Hour, err)
		}
	}

	m := res.Metrics
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_summaries (
			date, total_detections, total_movement_px, avg_movement_px,
			peak_hour, active_minutes, reliability, completeness, run_id, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			total_detections  = excluded.total_detections,
			total_movement_px = excluded.total_movement_px,
			avg_movement_px   = excluded.avg_movement_px,
			peak_hour         = excluded.peak_hour,
			active_minutes    = excluded.active_minutes,
			reliability       = excluded.reliability,
			completeness      = excluded.completeness,
			run_id            = excluded.run_id,
			updated_at        = CURRENT_TIMESTAMP`,
		res.Date, m.TotalDetections, m.TotalMovementPx, m.AvgMovementPerDetect,
		m.PeakActivityHour, m.ActiveDurationMinutes, m.DetectionReliability,
		m.DataCompleteness, res.RunID,
	); err != nil {
		return fmt.Errorf("failed to upsert daily summary: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (run_id, date, started_unix_nanos, observations, diagnostics)
		VALUES (?, ?, ?, ?, ?)`,
		res.RunID, res.Date, res.StartedAt.UnixNano(),
		len(res.Cleaned), len(res.Diagnostics),
	); err != nil {
		return fmt.Errorf("failed to record analysis run: %w", err)
	}

	return tx.Commit()
}

// HourlySummariesForDate returns the stored 24 rows for a date, ordered
// by hour. Missing dates return an empty slice.
func (db *DB) HourlySummariesForDate(ctx context.Context, date string) ([]activity.HourlySummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT date, hour, observations, detections,
		       movement_px, mean_confidence, max_confidence
		FROM hourly_summaries
		WHERE date = ?
		ORDER BY hour ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly summaries: %w", err)
	}
	defer rows.Close()

	var out []activity.HourlySummary
	for rows.Next() {
		var h activity.HourlySummary
		if err := rows.Scan(&h.Date, &h.Hour, &h.Observations, &h.Detections,
			&h.MovementPx, &h.MeanConfidence, &h.MaxConfidence); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DailySummaryForDate returns the stored daily summary row, or nil when
// no rollup has run for that date yet.
func (db *DB) DailySummaryForDate(ctx context.Context, date string) (*activity.Metrics, error) {
	var m activity.Metrics
	err := db.QueryRowContext(ctx, `
		SELECT total_detections, total_movement_px, avg_movement_px,
		       peak_hour, active_minutes, reliability, completeness
		FROM daily_summaries
		WHERE date = ?`, date).Scan(
		&m.TotalDetections, &m.TotalMovementPx, &m.AvgMovementPerDetect,
		&m.PeakActivityHour, &m.ActiveDurationMinutes,
		&m.DetectionReliability, &m.DataCompleteness,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	return &m, nil
}

// RecentRuns lists the most recent analysis runs.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]RunRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, date, started_unix_nanos, observations, diagnostics
		FROM analysis_runs
		ORDER BY started_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var nanos int64
		if err := rows.Scan(&r.RunID, &r.Date, &nanos, &r.Observations, &r.Diagnostics); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, nanos).UTC().Format(time.RFC3339Nano)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunRow is one analysis_runs record.
type RunRow struct {
	RunID        string `json:"run_id"`
	Date         string `json:"date"`
	StartedAt    string `json:"started_at"`
	Observations int    `json:"observations"`
	Diagnostics  int    `json:"diagnostics"`
}
