// Package series cleans ordered sequences of observation records:
// timestamp ordering and deduplication, gap interpolation, outlier
// detection and correction, smoothing, and optional normalization.
package series

import (
	"math"
	"sort"

	"github.com/banshee-data/activity.report/internal/insect"
)

// Strategy selects the outlier-detection method. Exactly one strategy is
// active per run.
type Strategy int

const (
	StrategyZScore Strategy = iota
	StrategyIQR
	StrategyDensity
)

// Policy selects how flagged outliers are resolved. Applied uniformly
// per run, not per value.
type Policy int

const (
	// PolicyInterpolate treats the outlier as missing and re-runs
	// interpolation. This is the default.
	PolicyInterpolate Policy = iota
	// PolicyRemove drops the whole row.
	PolicyRemove
	// PolicyClip clamps the value to the nearest threshold bound.
	PolicyClip
)

// Config holds the resolved cleaning parameters for one run.
type Config struct {
	Strategy         Strategy
	ZScoreThreshold  float64 // default 3.0
	IQRMultiplier    float64 // default 1.5
	DensityNeighbors int     // k for the density method, default 5
	Policy           Policy
	SmoothingWindow  int // odd; 0 disables smoothing
}

// DefaultConfig returns the documented cleaning defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:         StrategyZScore,
		ZScoreThreshold:  3.0,
		IQRMultiplier:    1.5,
		DensityNeighbors: 5,
		Policy:           PolicyInterpolate,
		SmoothingWindow:  5,
	}
}

// column maps a cleanable column name onto record field accessors.
type column struct {
	get func(*insect.ObservationRecord) *float64
	set func(*insect.ObservationRecord, *float64)
}

var columns = map[string]column{
	"center_x": {
		get: func(r *insect.ObservationRecord) *float64 { return r.CenterX },
		set: func(r *insect.ObservationRecord, v *float64) { r.CenterX = v },
	},
	"center_y": {
		get: func(r *insect.ObservationRecord) *float64 { return r.CenterY },
		set: func(r *insect.ObservationRecord, v *float64) { r.CenterY = v },
	},
	"mean_confidence": {
		get: func(r *insect.ObservationRecord) *float64 { return r.MeanConfidence },
		set: func(r *insect.ObservationRecord, v *float64) { r.MeanConfidence = v },
	},
	"max_confidence": {
		get: func(r *insect.ObservationRecord) *float64 { return r.MaxConfidence },
		set: func(r *insect.ObservationRecord, v *float64) { r.MaxConfidence = v },
	},
	"box_area": {
		get: func(r *insect.ObservationRecord) *float64 { return r.BoxArea },
		set: func(r *insect.ObservationRecord, v *float64) { r.BoxArea = v },
	},
}

// CleanableColumns lists the column names Clean accepts.
func CleanableColumns() []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clean returns a cleaned copy of records for the requested columns. The
// input is never mutated. Records are sorted by timestamp and duplicate
// timestamps resolved by keeping the first occurrence before any other
// step runs. A requested column that does not exist is skipped with a
// warn diagnostic.
func Clean(records []insect.ObservationRecord, cols []string, cfg Config) ([]insect.ObservationRecord, []insect.Diagnostic) {
	var diags []insect.Diagnostic
	out := insect.CloneRecords(records)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	out = dedupeTimestamps(out)

	// Resolve requested columns up front so one bad name does not
	// change how the rest are processed.
	active := make([]string, 0, len(cols))
	for _, name := range cols {
		if _, ok := columns[name]; !ok {
			diags = append(diags, insect.Warnf("series", "unknown column %q skipped", name))
			continue
		}
		active = append(active, name)
	}

	if cfg.Strategy == StrategyDensity {
		out, diags = cleanDensity(out, active, cfg, diags)
	} else {
		for _, name := range active {
			out = cleanColumn(out, name, cfg)
		}
	}

	for _, name := range active {
		out = smoothColumn(out, name, cfg.SmoothingWindow)
	}
	return out, diags
}

// dedupeTimestamps drops later rows sharing a timestamp with an earlier
// row. Input must already be sorted.
func dedupeTimestamps(records []insect.ObservationRecord) []insect.ObservationRecord {
	out := records[:0]
	for i, r := range records {
		if i > 0 && r.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// cleanColumn interpolates gaps then resolves outliers for one column
// with a scalar strategy (z-score or IQR).
func cleanColumn(records []insect.ObservationRecord, name string, cfg Config) []insect.ObservationRecord {
	vals := extract(records, name)
	vals = interpolate(times(records), vals)

	flags, lo, hi := flagOutliers(vals, cfg)
	switch cfg.Policy {
	case PolicyRemove:
		records, vals = dropRows(records, vals, flags)
	case PolicyClip:
		for i, f := range flags {
			if !f {
				continue
			}
			if vals[i] < lo {
				vals[i] = lo
			} else if vals[i] > hi {
				vals[i] = hi
			}
		}
	default: // PolicyInterpolate
		for i, f := range flags {
			if f {
				vals[i] = math.NaN()
			}
		}
		vals = interpolate(times(records), vals)
	}

	store(records, name, vals)
	return records
}

// cleanDensity handles the multi-column density strategy: rows are
// flagged jointly across the active columns. Clip has no scalar bound
// under this strategy, so it degrades to interpolate.
func cleanDensity(records []insect.ObservationRecord, active []string, cfg Config, diags []insect.Diagnostic) ([]insect.ObservationRecord, []insect.Diagnostic) {
	cols := make([][]float64, len(active))
	for i, name := range active {
		cols[i] = interpolate(times(records), extract(records, name))
	}
	if len(cols) == 0 || len(records) == 0 {
		return records, diags
	}

	flags := densityFlags(cols, cfg.DensityNeighbors, cfg.ZScoreThreshold)

	switch cfg.Policy {
	case PolicyRemove:
		kept := records[:0]
		keptCols := make([][]float64, len(cols))
		for i, r := range records {
			if flags[i] {
				continue
			}
			kept = append(kept, r)
			for c := range cols {
				keptCols[c] = append(keptCols[c], cols[c][i])
			}
		}
		records, cols = kept, keptCols
	default: // PolicyInterpolate, and PolicyClip degraded to it
		if cfg.Policy == PolicyClip {
			diags = append(diags, insect.Warnf("series", "clip policy has no bounds under density strategy; interpolating instead"))
		}
		for c := range cols {
			for i, f := range flags {
				if f {
					cols[c][i] = math.NaN()
				}
			}
			cols[c] = interpolate(times(records), cols[c])
		}
	}

	for i, name := range active {
		store(records, name, cols[i])
	}
	return records, diags
}

// dropRows removes flagged rows from both the record slice and the
// working column values.
func dropRows(records []insect.ObservationRecord, vals []float64, flags []bool) ([]insect.ObservationRecord, []float64) {
	keptRecs := records[:0]
	keptVals := vals[:0]
	for i, r := range records {
		if flags[i] {
			continue
		}
		keptRecs = append(keptRecs, r)
		keptVals = append(keptVals, vals[i])
	}
	return keptRecs, keptVals
}

func times(records []insect.ObservationRecord) []int64 {
	ts := make([]int64, len(records))
	for i, r := range records {
		ts[i] = r.Timestamp.UnixNano()
	}
	return ts
}

// extract pulls one column into a float slice with NaN marking nulls.
func extract(records []insect.ObservationRecord, name string) []float64 {
	col := columns[name]
	vals := make([]float64, len(records))
	for i := range records {
		if v := col.get(&records[i]); v != nil {
			vals[i] = *v
		} else {
			vals[i] = math.NaN()
		}
	}
	return vals
}

// store writes cleaned values back. NaN maps back to a null field.
func store(records []insect.ObservationRecord, name string, vals []float64) {
	col := columns[name]
	for i := range records {
		if math.IsNaN(vals[i]) {
			col.set(&records[i], nil)
		} else {
			col.set(&records[i], insect.Float64Ptr(vals[i]))
		}
	}
}

// interpolate fills NaN gaps by time-weighted linear interpolation
// between the nearest valid neighbours. Gaps at the edges are filled
// from the nearest valid value. A fully-null column stays null.
func interpolate(ts []int64, vals []float64) []float64 {
	n := len(vals)
	out := make([]float64, n)
	copy(out, vals)

	prev := -1 // index of last valid value seen
	for i := 0; i < n; i++ {
		if !math.IsNaN(out[i]) {
			prev = i
			continue
		}
		// Find the next valid value.
		next := -1
		for j := i + 1; j < n; j++ {
			if !math.IsNaN(out[j]) {
				next = j
				break
			}
		}
		switch {
		case prev >= 0 && next >= 0:
			span := float64(ts[next] - ts[prev])
			if span <= 0 {
				out[i] = out[prev]
				break
			}
			frac := float64(ts[i]-ts[prev]) / span
			out[i] = out[prev] + (out[next]-out[prev])*frac
		case prev >= 0:
			out[i] = out[prev] // forward fill at the tail
		case next >= 0:
			out[i] = out[next] // backward fill at the head
		}
		if !math.IsNaN(out[i]) {
			prev = i
		}
	}
	return out
}

// smoothColumn applies a centred moving average of the given odd window
// to one column. Edges use the available shorter window so the series
// keeps its length. Window sizes below 3 disable smoothing.
func smoothColumn(records []insect.ObservationRecord, name string, window int) []insect.ObservationRecord {
	if window < 3 || len(records) == 0 {
		return records
	}
	vals := extract(records, name)
	store(records, name, MovingAverage(vals, window))
	return records
}

// MovingAverage returns the centred moving average of vals. NaN entries
// are excluded from each window; a window with no valid values yields
// NaN. Output length equals input length.
func MovingAverage(vals []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(vals))
	for i := range vals {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(vals)-1 {
			hi = len(vals) - 1
		}
		var sum float64
		var count int
		for j := lo; j <= hi; j++ {
			if math.IsNaN(vals[j]) {
				continue
			}
			sum += vals[j]
			count++
		}
		if count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
	return out
}
