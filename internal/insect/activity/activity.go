// Package activity derives movement and activity statistics from a
// cleaned observation series: inter-observation movement distances with
// speed-based rejection, aggregate daily metrics, and hourly rollups.
package activity

import (
	"math"
	"time"

	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/insect/series"
)

// Config holds the resolved calculator parameters for one run.
type Config struct {
	// SpeedCeiling in pixels per minute. A movement sample implying a
	// higher speed is a detection-continuity break, not motion, and is
	// dropped rather than clamped.
	SpeedCeiling float64

	// ZScoreThreshold for the independent outlier pass over the
	// movement-distance sequence.
	ZScoreThreshold float64

	// SmoothingWindow for the optional moving average over retained
	// distances; 0 disables.
	SmoothingWindow int

	// ObservationInterval is the scheduled cadence, used for the
	// expected row count in the completeness ratio.
	ObservationInterval time.Duration
}

// Movement is one derived sample between two consecutive valid
// positions. Never stored, only aggregated.
type Movement struct {
	Distance       float64 // pixels, >= 0
	ElapsedMinutes float64
	From           time.Time
	To             time.Time
}

// Metrics are the aggregate activity statistics for one period.
// Read-only after creation; an empty input yields the zero value with
// DataCompleteness 0, which is the defined "no data" result.
type Metrics struct {
	TotalDetections       int     `json:"total_detections"`
	TotalMovementPx       float64 `json:"total_movement_px"`
	AvgMovementPerDetect  float64 `json:"avg_movement_per_detection"`
	PeakActivityHour      int     `json:"peak_activity_hour"`
	ActiveDurationMinutes float64 `json:"active_duration_minutes"`
	DetectionReliability  float64 `json:"detection_reliability"`
	DataCompleteness      float64 `json:"data_completeness"`
}

// Distance returns the Euclidean distance between two positions.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// ComputeMovements walks consecutive valid-position observations and
// emits one sample per pair, dropping samples whose implied speed
// exceeds the ceiling. Records are assumed time-sorted (the cleaner's
// output contract).
func ComputeMovements(records []insect.ObservationRecord, cfg Config) []Movement {
	var out []Movement
	prev := -1
	for i := range records {
		if !records[i].HasPosition() {
			continue
		}
		if prev < 0 {
			prev = i
			continue
		}
		a, b := &records[prev], &records[i]
		prev = i

		dist := Distance(*a.CenterX, *a.CenterY, *b.CenterX, *b.CenterY)
		elapsed := b.Timestamp.Sub(a.Timestamp).Minutes()
		if elapsed <= 0 {
			continue
		}
		if cfg.SpeedCeiling > 0 && dist/elapsed > cfg.SpeedCeiling {
			continue
		}
		out = append(out, Movement{
			Distance:       dist,
			ElapsedMinutes: elapsed,
			From:           a.Timestamp,
			To:             b.Timestamp,
		})
	}
	return out
}

// FilterMovements runs the independent z-score outlier pass over the
// distance sequence and applies the optional smoothing window, so a
// single spurious jump cannot dominate daily totals. Flagged samples
// are removed; smoothing replaces each retained distance with its
// windowed average.
func FilterMovements(samples []Movement, cfg Config) []Movement {
	if len(samples) == 0 {
		return samples
	}
	dists := Distances(samples)

	flags := series.ZScoreFlags(dists, cfg.ZScoreThreshold)
	kept := make([]Movement, 0, len(samples))
	for i, m := range samples {
		if !flags[i] {
			kept = append(kept, m)
		}
	}

	if cfg.SmoothingWindow >= 3 && len(kept) > 0 {
		smoothed := series.MovingAverage(Distances(kept), cfg.SmoothingWindow)
		for i := range kept {
			kept[i].Distance = smoothed[i]
		}
	}
	return kept
}

// Distances projects the distance column out of a sample list.
func Distances(samples []Movement) []float64 {
	out := make([]float64, len(samples))
	for i, m := range samples {
		out[i] = m.Distance
	}
	return out
}

// ComputeMetrics aggregates one period. start/end bound the period for
// the completeness ratio; movements must come from the same records via
// ComputeMovements/FilterMovements.
func ComputeMetrics(records []insect.ObservationRecord, movements []Movement, start, end time.Time, cfg Config) Metrics {
	var m Metrics
	if len(records) == 0 {
		return m
	}

	hourCounts := make(map[int]int)
	var confSum float64
	var confN int
	var firstDet, lastDet time.Time
	for i := range records {
		r := &records[i]
		if !r.Detected {
			continue
		}
		m.TotalDetections++
		hourCounts[r.Timestamp.Hour()]++
		if r.MeanConfidence != nil {
			confSum += *r.MeanConfidence
			confN++
		}
		if firstDet.IsZero() {
			firstDet = r.Timestamp
		}
		lastDet = r.Timestamp
	}

	for _, mv := range movements {
		m.TotalMovementPx += mv.Distance
	}
	if m.TotalDetections > 0 {
		m.AvgMovementPerDetect = m.TotalMovementPx / float64(m.TotalDetections)
		m.ActiveDurationMinutes = lastDet.Sub(firstDet).Minutes()
	}
	if confN > 0 {
		m.DetectionReliability = confSum / float64(confN)
	}

	// Peak hour: most detections, earliest hour wins ties.
	best := -1
	for hour := 0; hour < 24; hour++ {
		if c := hourCounts[hour]; c > best {
			best = c
			m.PeakActivityHour = hour
		}
	}

	if cfg.ObservationInterval > 0 && end.After(start) {
		expected := float64(end.Sub(start)) / float64(cfg.ObservationInterval)
		if expected > 0 {
			m.DataCompleteness = float64(len(records)) / expected
		}
	}
	return m
}
