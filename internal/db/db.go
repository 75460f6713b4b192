// Package db persists observation rows and activity summaries in
// sqlite. One observations row per cycle; hourly and daily summary rows
// are replaced atomically per analysis run.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/security"
)

type DB struct {
	*sql.DB
	path string
}

// NewDB opens (creating if needed) the sqlite database at path and
// ensures the baseline schema exists.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS observations (
			sequence            BIGINT,
			observed_unix_nanos BIGINT NOT NULL,
			detection_count     BIGINT NOT NULL DEFAULT 0,
			detected            BOOLEAN NOT NULL DEFAULT 0,
			center_x            DOUBLE,
			center_y            DOUBLE,
			mean_confidence     DOUBLE,
			max_confidence      DOUBLE,
			box_area            DOUBLE,
			process_time_ms     DOUBLE NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_observations_observed ON observations(observed_unix_nanos);
		CREATE TABLE IF NOT EXISTS hourly_summaries (
			date              TEXT NOT NULL,
			hour              BIGINT NOT NULL,
			observations      BIGINT NOT NULL DEFAULT 0,
			detections        BIGINT NOT NULL DEFAULT 0,
			movement_px       DOUBLE NOT NULL DEFAULT 0,
			mean_confidence   DOUBLE NOT NULL DEFAULT 0,
			max_confidence    DOUBLE NOT NULL DEFAULT 0,
			PRIMARY KEY (date, hour)
		);
		CREATE TABLE IF NOT EXISTS daily_summaries (
			date              TEXT PRIMARY KEY,
			total_detections  BIGINT NOT NULL DEFAULT 0,
			total_movement_px DOUBLE NOT NULL DEFAULT 0,
			avg_movement_px   DOUBLE NOT NULL DEFAULT 0,
			peak_hour         BIGINT NOT NULL DEFAULT 0,
			active_minutes    DOUBLE NOT NULL DEFAULT 0,
			reliability       DOUBLE NOT NULL DEFAULT 0,
			completeness      DOUBLE NOT NULL DEFAULT 0,
			run_id            TEXT,
			updated_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id             TEXT PRIMARY KEY,
			date               TEXT NOT NULL,
			started_unix_nanos BIGINT NOT NULL,
			observations       BIGINT NOT NULL DEFAULT 0,
			diagnostics        BIGINT NOT NULL DEFAULT 0,
			timestamp          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, path: path}, nil
}

// RecordObservation inserts one observation cycle row. Timestamps are
// stored as integer unix nanos so range queries and ordering are
// numeric. Null position and confidence fields stay NULL, never zero.
func (db *DB) RecordObservation(ctx context.Context, rec insect.ObservationRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO observations (
			sequence, observed_unix_nanos, detection_count, detected,
			center_x, center_y, mean_confidence, max_confidence,
			box_area, process_time_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Sequence,
		rec.Timestamp.UnixNano(),
		rec.DetectionCount,
		rec.Detected,
		rec.CenterX,
		rec.CenterY,
		rec.MeanConfidence,
		rec.MaxConfidence,
		rec.BoxArea,
		rec.ProcessTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record observation: %w", err)
	}
	return nil
}

// ObservationsForDay returns the day's rows ordered by timestamp.
func (db *DB) ObservationsForDay(ctx context.Context, day time.Time, loc *time.Location) ([]insect.ObservationRecord, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	rows, err := db.QueryContext(ctx, `
		SELECT sequence, observed_unix_nanos, detection_count, detected,
		       center_x, center_y, mean_confidence, max_confidence,
		       box_area, process_time_ms
		FROM observations
		WHERE observed_unix_nanos >= ? AND observed_unix_nanos < ?
		ORDER BY observed_unix_nanos ASC`,
		start.UnixNano(),
		end.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var records []insect.ObservationRecord
	for rows.Next() {
		var rec insect.ObservationRecord
		var nanos int64
		var cx, cy, meanConf, maxConf, area sql.NullFloat64
		if err := rows.Scan(
			&rec.Sequence,
			&nanos,
			&rec.DetectionCount,
			&rec.Detected,
			&cx, &cy, &meanConf, &maxConf, &area,
			&rec.ProcessTimeMs,
		); err != nil {
			return nil, err
		}
		rec.Timestamp = time.Unix(0, nanos).In(loc)
		rec.CenterX = nullToPtr(cx)
		rec.CenterY = nullToPtr(cy)
		rec.MeanConfidence = nullToPtr(meanConf)
		rec.MaxConfidence = nullToPtr(maxConf)
		rec.BoxArea = nullToPtr(area)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nullToPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

// AttachAdminRoutes mounts the tsweb debugger, the tailSQL live query
// console, and a backup download handler on mux.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Activity DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := filepath.Join(os.TempDir(),
			security.SanitizeFilename(fmt.Sprintf("backup-%d.db", time.Now().Unix())))
		if err := security.ValidateExportPath(backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Invalid backup path: %v", err), http.StatusInternalServerError)
			return
		}
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeFile(w, r, backupPath)
	}))
}
