package pipeline

import (
	"context"
	"time"

	"github.com/banshee-data/activity.report/internal/config"
	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/monitoring"
	"github.com/banshee-data/activity.report/internal/timeutil"
)

// Store is the persistence surface the rollup worker needs. Implemented
// by internal/db.
type Store interface {
	// ObservationsForDay loads the day's observation rows, time-sorted.
	ObservationsForDay(ctx context.Context, day time.Time, loc *time.Location) ([]insect.ObservationRecord, error)

	// SaveRunResult atomically upserts the run's hourly and daily
	// summary rows. Called only for completed runs.
	SaveRunResult(ctx context.Context, res *Result) error
}

// RollupWorker periodically re-analyzes the current day and upserts its
// hourly/daily summaries. Designed to run every 15 minutes; re-runs are
// idempotent because summaries are replaced per (date).
type RollupWorker struct {
	Store    Store
	Config   *config.TuningConfig
	Clock    timeutil.Clock
	StopChan chan struct{}
}

// NewRollupWorker creates a worker with the real clock.
func NewRollupWorker(store Store, cfg *config.TuningConfig) *RollupWorker {
	return &RollupWorker{
		Store:    store,
		Config:   cfg,
		Clock:    timeutil.RealClock{},
		StopChan: make(chan struct{}),
	}
}

// Start runs the periodic worker loop in a goroutine.
func (w *RollupWorker) Start() {
	// Create the ticker before launching the goroutine so it is
	// registered with the clock by the time Start returns.
	ticker := w.Clock.NewTicker(w.Config.GetRollupInterval())
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := w.RunOnce(context.Background()); err != nil {
					monitoring.Logf("rollup worker run error: %v", err)
				}
			case <-w.StopChan:
				return
			}
		}
	}()
}

// Stop requests the worker to stop.
func (w *RollupWorker) Stop() {
	close(w.StopChan)
}

// RunOnce analyzes the current day and persists the summaries. A run
// either completes and is saved whole, or fails and saves nothing.
func (w *RollupWorker) RunOnce(ctx context.Context) error {
	return w.RunDay(ctx, w.Clock.Now())
}

// RunDay analyzes one calendar day and persists the summaries.
func (w *RollupWorker) RunDay(ctx context.Context, day time.Time) error {
	loc := w.Config.GetLocation()
	records, err := w.Store.ObservationsForDay(ctx, day, loc)
	if err != nil {
		return &insect.PersistenceError{Op: "load observations", Err: err}
	}

	res := Run(day, records, w.Config)
	for _, d := range res.Diagnostics {
		monitoring.Logf("rollup %s [%s/%s]: %s", res.Date, d.Level, d.Component, d.Message)
	}

	if err := w.Store.SaveRunResult(ctx, res); err != nil {
		return &insect.PersistenceError{Op: "save summaries", Err: err}
	}
	monitoring.Logf("rollup %s: %d observations, %d detections, %.1fpx movement (run %s)",
		res.Date, len(res.Cleaned), res.Metrics.TotalDetections, res.Metrics.TotalMovementPx, res.RunID)
	return nil
}
