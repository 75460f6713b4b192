package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/banshee-data/activity.report/internal/config"
	"github.com/banshee-data/activity.report/internal/insect"
)

var day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// sampleDay builds a plausible observation day: a slow drift with a
// mid-series gap and one duplicate timestamp.
func sampleDay() []insect.ObservationRecord {
	var out []insect.ObservationRecord
	for i := 0; i < 60; i++ {
		r := insect.ObservationRecord{
			Timestamp:      day.Add(time.Duration(i) * time.Minute).Add(6 * time.Hour),
			Sequence:       int64(i),
			Detected:       true,
			DetectionCount: 1,
			CenterX:        insect.Float64Ptr(100 + float64(i)),
			CenterY:        insect.Float64Ptr(200 + float64(i)/2),
			MeanConfidence: insect.Float64Ptr(0.8),
			MaxConfidence:  insect.Float64Ptr(0.9),
			BoxArea:        insect.Float64Ptr(400),
		}
		if i == 30 { // one missed detection mid-series
			r.Detected = false
			r.DetectionCount = 0
			r.CenterX, r.CenterY = nil, nil
			r.MeanConfidence, r.MaxConfidence, r.BoxArea = nil, nil, nil
		}
		out = append(out, r)
	}
	// Duplicate of the first timestamp; the cleaner must drop it.
	out = append(out, out[0])
	return out
}

func TestRun(t *testing.T) {
	t.Parallel()

	cfg := config.EmptyTuningConfig()
	records := sampleDay()
	res := Run(day, records, cfg)

	if res.RunID == "" {
		t.Error("RunID empty")
	}
	if res.Date != "2026-06-01" {
		t.Errorf("Date = %q, want 2026-06-01", res.Date)
	}
	if len(res.Cleaned) != 60 {
		t.Errorf("cleaned %d records, want 60 after dedupe", len(res.Cleaned))
	}
	if len(res.Daily.Hours) != 24 {
		t.Fatalf("got %d hourly rows, want 24", len(res.Daily.Hours))
	}
	if res.Metrics.TotalDetections == 0 {
		t.Error("no detections counted")
	}
	if res.Metrics.TotalMovementPx <= 0 {
		t.Error("no movement derived from a drifting series")
	}
	if res.Metrics != res.Daily.Metrics {
		t.Error("Result.Metrics diverges from Daily.Metrics")
	}

	// The gap record must have been interpolated, not left null.
	for _, r := range res.Cleaned {
		if r.CenterX == nil {
			t.Error("cleaned series still has a position gap")
			break
		}
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := sampleDay()
	Run(day, records, config.EmptyTuningConfig())

	if records[30].CenterX != nil {
		t.Error("input gap was filled in place")
	}
	if got := *records[0].CenterX; got != 100 {
		t.Errorf("input record changed: CenterX = %v, want 100", got)
	}
}

func TestRunEmptyDay(t *testing.T) {
	t.Parallel()

	res := Run(day, nil, config.EmptyTuningConfig())
	if res.Metrics.TotalDetections != 0 || res.Metrics.TotalMovementPx != 0 {
		t.Errorf("empty day produced non-zero metrics: %+v", res.Metrics)
	}
	if len(res.Daily.Hours) != 24 {
		t.Errorf("got %d hourly rows, want 24 even for an empty day", len(res.Daily.Hours))
	}
}

func TestRunNormalizedView(t *testing.T) {
	t.Parallel()

	scaler := "minmax"
	cfg := config.EmptyTuningConfig()
	cfg.Scaler = &scaler
	res := Run(day, sampleDay(), cfg)

	if len(res.Normalized) != len(res.Cleaned) {
		t.Fatalf("normalized %d records, want %d", len(res.Normalized), len(res.Cleaned))
	}
	if res.Scalers["center_x"] == nil {
		t.Fatal("no fitted scaler for center_x")
	}
	for _, r := range res.Normalized {
		if r.CenterX == nil {
			continue
		}
		if *r.CenterX < 0 || *r.CenterX > 1 {
			t.Fatalf("min-max value %v outside [0,1]", *r.CenterX)
		}
	}
	// The pixel-space series and its movement stay as without scaling.
	if *res.Cleaned[1].CenterX != 101 {
		t.Errorf("cleaned series was scaled: CenterX = %v", *res.Cleaned[1].CenterX)
	}
	if res.Metrics.TotalMovementPx == 0 {
		t.Error("movement lost under scaling")
	}
}

func TestRunDefaultScalerOff(t *testing.T) {
	t.Parallel()

	res := Run(day, sampleDay(), config.EmptyTuningConfig())
	if res.Normalized != nil || res.Scalers != nil {
		t.Errorf("normalized view produced without a configured scaler")
	}
}

func TestSeriesConfigDefaults(t *testing.T) {
	t.Parallel()

	sc := SeriesConfig(config.EmptyTuningConfig())
	if sc.ZScoreThreshold != 3.0 || sc.IQRMultiplier != 1.5 || sc.SmoothingWindow != 5 {
		t.Errorf("unexpected defaults: %+v", sc)
	}
}

func TestActivityConfigDerivedCeiling(t *testing.T) {
	t.Parallel()

	ac := ActivityConfig(config.EmptyTuningConfig())
	want := math.Hypot(1280, 720) / 2
	if math.Abs(ac.SpeedCeiling-want) > 1e-9 {
		t.Errorf("SpeedCeiling = %v, want frame diagonal / 2 = %v", ac.SpeedCeiling, want)
	}
	if ac.ObservationInterval != time.Minute {
		t.Errorf("ObservationInterval = %v, want 1m", ac.ObservationInterval)
	}
}
