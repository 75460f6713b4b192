package series

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// flagOutliers runs the configured scalar strategy over one column and
// returns per-row flags plus the clamp bounds for the clip policy. NaN
// entries are never flagged.
func flagOutliers(vals []float64, cfg Config) (flags []bool, lo, hi float64) {
	switch cfg.Strategy {
	case StrategyIQR:
		return iqrFlags(vals, cfg.IQRMultiplier)
	default:
		return zscoreFlags(vals, cfg.ZScoreThreshold)
	}
}

// ZScoreFlags flags values whose |z| exceeds threshold. Exported for
// the movement calculator, which runs its own outlier pass over
// movement distances independent of column cleaning.
func ZScoreFlags(vals []float64, threshold float64) []bool {
	flags, _, _ := zscoreFlags(vals, threshold)
	return flags
}

// zscoreFlags flags values whose |z| exceeds threshold. Mean and
// standard deviation are computed excluding nulls.
func zscoreFlags(vals []float64, threshold float64) (flags []bool, lo, hi float64) {
	flags = make([]bool, len(vals))
	valid := compactValid(vals)
	if len(valid) < 2 {
		return flags, math.Inf(-1), math.Inf(1)
	}

	mean, std := stat.MeanStdDev(valid, nil)
	if std == 0 || math.IsNaN(std) {
		return flags, mean, mean
	}

	lo = mean - threshold*std
	hi = mean + threshold*std
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.Abs(v-mean)/std > threshold {
			flags[i] = true
		}
	}
	return flags, lo, hi
}

// iqrFlags flags values outside [Q1 - k*IQR, Q3 + k*IQR].
func iqrFlags(vals []float64, k float64) (flags []bool, lo, hi float64) {
	flags = make([]bool, len(vals))
	valid := compactValid(vals)
	if len(valid) < 4 {
		return flags, math.Inf(-1), math.Inf(1)
	}

	sort.Float64s(valid)
	q1 := stat.Quantile(0.25, stat.Empirical, valid, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, valid, nil)
	iqr := q3 - q1

	lo = q1 - k*iqr
	hi = q3 + k*iqr
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < lo || v > hi {
			flags[i] = true
		}
	}
	return flags, lo, hi
}

// densityFlags flags rows whose mean distance to their k nearest
// neighbours is anomalously large, judged by z-score against the other
// rows' neighbour distances. cols is column-major: cols[c][row].
func densityFlags(cols [][]float64, k int, threshold float64) []bool {
	n := len(cols[0])
	flags := make([]bool, n)
	if k < 1 {
		k = 1
	}
	if n <= k {
		return flags
	}

	// Mean distance to the k nearest neighbours per row. O(n^2) is fine
	// at one row per observation cycle.
	meanDist := make([]float64, n)
	dists := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		dists = dists[:0]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			var sq float64
			for c := range cols {
				d := cols[c][i] - cols[c][j]
				if math.IsNaN(d) {
					d = 0
				}
				sq += d * d
			}
			dists = append(dists, math.Sqrt(sq))
		}
		sort.Float64s(dists)
		var sum float64
		for _, d := range dists[:k] {
			sum += d
		}
		meanDist[i] = sum / float64(k)
	}

	zflags, _, _ := zscoreFlags(meanDist, threshold)
	copy(flags, zflags)
	return flags
}

// compactValid returns the non-NaN values of vals in a fresh slice.
func compactValid(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
