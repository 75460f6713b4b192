// Package pipeline drives a full analysis run: cleaned series ->
// movement samples -> activity metrics -> hourly and daily summaries.
package pipeline

import (
	"time"

	"github.com/banshee-data/activity.report/internal/config"
	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/insect/activity"
	"github.com/banshee-data/activity.report/internal/insect/series"
	"github.com/google/uuid"
)

// CleanColumns are the columns the daily analysis cleans before
// deriving movement. Confidence columns are cleaned for the summary
// stats even though movement only reads positions.
var CleanColumns = []string{"center_x", "center_y", "mean_confidence", "max_confidence", "box_area"}

// Result holds everything one analysis run produced. Read-only once
// returned; nothing from a failed run is ever persisted.
type Result struct {
	RunID       string
	Date        string
	StartedAt   time.Time
	Cleaned     []insect.ObservationRecord
	Normalized  []insect.ObservationRecord
	Scalers     map[string]series.Scaler
	Movements   []activity.Movement
	Metrics     activity.Metrics
	Daily       activity.DailySummary
	Diagnostics []insect.Diagnostic
}

// SeriesConfig assembles the cleaner parameters from the tuning config.
// The config was validated at load time, so the parse cannot fail here.
func SeriesConfig(cfg *config.TuningConfig) series.Config {
	strategy, _ := series.ParseStrategy(cfg.GetOutlierStrategy())
	policy, _ := series.ParsePolicy(cfg.GetOutlierPolicy())
	return series.Config{
		Strategy:         strategy,
		ZScoreThreshold:  cfg.GetZScoreThreshold(),
		IQRMultiplier:    cfg.GetIQRMultiplier(),
		DensityNeighbors: cfg.GetDensityNeighbors(),
		Policy:           policy,
		SmoothingWindow:  cfg.GetSmoothingWindow(),
	}
}

// ActivityConfig assembles the calculator parameters from the tuning config.
func ActivityConfig(cfg *config.TuningConfig) activity.Config {
	return activity.Config{
		SpeedCeiling:        cfg.GetSpeedCeiling(),
		ZScoreThreshold:     cfg.GetZScoreThreshold(),
		SmoothingWindow:     cfg.GetSmoothingWindow(),
		ObservationInterval: cfg.GetObservationInterval(),
	}
}

// Run executes one full analysis over a day of observation records.
// The input snapshot is never mutated. Item-level problems come back as
// diagnostics on a successful result; only configuration and
// persistence problems are hard failures, and both are caught before or
// after this function.
func Run(day time.Time, records []insect.ObservationRecord, cfg *config.TuningConfig) *Result {
	res := &Result{
		RunID:     uuid.NewString(),
		Date:      day.In(cfg.GetLocation()).Format("2006-01-02"),
		StartedAt: time.Now(),
	}

	cleaned, diags := series.Clean(records, CleanColumns, SeriesConfig(cfg))
	res.Cleaned = cleaned
	res.Diagnostics = append(res.Diagnostics, diags...)

	// Movement and summaries always work in frame pixels; the scaler
	// produces a normalized view of the cleaned series alongside them.
	if kind, _ := series.ParseScaler(cfg.GetScaler()); kind != series.ScalerNone {
		normalized, scalers, ndiags := series.Normalize(cleaned, CleanColumns, kind)
		res.Normalized = normalized
		res.Scalers = scalers
		res.Diagnostics = append(res.Diagnostics, ndiags...)
	}

	acfg := ActivityConfig(cfg)
	res.Movements = activity.FilterMovements(activity.ComputeMovements(cleaned, acfg), acfg)

	res.Daily = activity.BuildDailySummary(day, cfg.GetLocation(), cleaned, res.Movements, acfg)
	res.Metrics = res.Daily.Metrics
	return res
}
