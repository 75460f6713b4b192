package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/activity.report/internal/insect"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(filepath.Join(t.TempDir(), "activity.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

var obsTime = time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC)

func observation(seq int64, at time.Time, detected bool) insect.ObservationRecord {
	rec := insect.ObservationRecord{
		Timestamp:     at,
		Sequence:      seq,
		Detected:      detected,
		ProcessTimeMs: 9.5,
	}
	if detected {
		rec.DetectionCount = 1
		rec.CenterX = insect.Float64Ptr(100.5)
		rec.CenterY = insect.Float64Ptr(220.25)
		rec.MeanConfidence = insect.Float64Ptr(0.8)
		rec.MaxConfidence = insect.Float64Ptr(0.92)
		rec.BoxArea = insect.Float64Ptr(1600)
	}
	return rec
}

func TestRecordAndQueryObservations(t *testing.T) {
	t.Parallel()

	database := testDB(t)
	ctx := context.Background()

	want := []insect.ObservationRecord{
		observation(1, obsTime, true),
		observation(2, obsTime.Add(time.Minute), false),
	}
	for _, rec := range want {
		if err := database.RecordObservation(ctx, rec); err != nil {
			t.Fatalf("RecordObservation: %v", err)
		}
	}

	got, err := database.ObservationsForDay(ctx, obsTime, time.UTC)
	if err != nil {
		t.Fatalf("ObservationsForDay: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Null fields must come back nil, not zero.
	if got[1].CenterX != nil {
		t.Errorf("no-detection row came back with CenterX %v", *got[1].CenterX)
	}
}

func TestObservationsForDayBoundaries(t *testing.T) {
	t.Parallel()

	database := testDB(t)
	ctx := context.Background()

	inside := observation(1, obsTime, true)
	nextDay := observation(2, obsTime.AddDate(0, 0, 1), true)
	for _, rec := range []insect.ObservationRecord{inside, nextDay} {
		if err := database.RecordObservation(ctx, rec); err != nil {
			t.Fatalf("RecordObservation: %v", err)
		}
	}

	got, err := database.ObservationsForDay(ctx, obsTime, time.UTC)
	if err != nil {
		t.Fatalf("ObservationsForDay: %v", err)
	}
	if len(got) != 1 || got[0].Sequence != 1 {
		t.Errorf("day query returned %d rows, want only the in-day row", len(got))
	}
}

func TestObservationsSubSecondOrdering(t *testing.T) {
	t.Parallel()

	database := testDB(t)
	ctx := context.Background()

	// A row half a second into the day must land in that day, not the
	// previous one, and rows 500ms apart must come back in time order.
	midnight := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	rows := []insect.ObservationRecord{
		observation(1, midnight.Add(500*time.Millisecond), true),
		observation(2, obsTime.Add(500*time.Millisecond), true),
		observation(3, obsTime, false),
	}
	for _, rec := range rows {
		if err := database.RecordObservation(ctx, rec); err != nil {
			t.Fatalf("RecordObservation: %v", err)
		}
	}

	prev, err := database.ObservationsForDay(ctx, midnight.AddDate(0, 0, -1), time.UTC)
	if err != nil {
		t.Fatalf("ObservationsForDay: %v", err)
	}
	if len(prev) != 0 {
		t.Errorf("previous day picked up %d rows, want 0", len(prev))
	}

	got, err := database.ObservationsForDay(ctx, midnight, time.UTC)
	if err != nil {
		t.Fatalf("ObservationsForDay: %v", err)
	}
	if len(got) != 1 || got[0].Sequence != 1 {
		t.Fatalf("midnight row missing from its own day: got %d rows", len(got))
	}

	sameDay, err := database.ObservationsForDay(ctx, obsTime, time.UTC)
	if err != nil {
		t.Fatalf("ObservationsForDay: %v", err)
	}
	if len(sameDay) != 2 {
		t.Fatalf("got %d rows, want 2", len(sameDay))
	}
	// The whole-second row precedes the row 500ms after it.
	if sameDay[0].Sequence != 3 || sameDay[1].Sequence != 2 {
		t.Errorf("rows out of order: sequences %d, %d",
			sameDay[0].Sequence, sameDay[1].Sequence)
	}
	if !sameDay[1].Timestamp.Equal(obsTime.Add(500 * time.Millisecond)) {
		t.Errorf("sub-second timestamp not preserved: got %v", sameDay[1].Timestamp)
	}
}

func TestMigrateUp(t *testing.T) {
	t.Parallel()

	database := testDB(t)
	if err := database.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	version, dirty, err := database.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("migration left the database dirty")
	}
	if version == 0 {
		t.Error("no migration version recorded")
	}

	// Re-running must be a no-op.
	if err := database.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}
}
