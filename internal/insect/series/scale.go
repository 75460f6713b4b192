package series

import (
	"math"
	"sort"

	"github.com/banshee-data/activity.report/internal/insect"
	"gonum.org/v1/gonum/stat"
)

// ScalerKind selects the normalization method.
type ScalerKind int

const (
	ScalerNone ScalerKind = iota
	ScalerMinMax
	ScalerStandard
	ScalerRobust
)

// Scaler normalizes one column. Fit captures the parameters; Transform
// applies them, so one fit can be reused across a run.
type Scaler interface {
	Fit(vals []float64)
	Transform(vals []float64) []float64
}

// NewScaler builds a scaler of the given kind, nil for ScalerNone.
func NewScaler(kind ScalerKind) Scaler {
	switch kind {
	case ScalerMinMax:
		return &MinMaxScaler{}
	case ScalerStandard:
		return &StandardScaler{}
	case ScalerRobust:
		return &RobustScaler{}
	default:
		return nil
	}
}

// MinMaxScaler maps the observed [min,max] onto [0,1].
type MinMaxScaler struct {
	Min float64
	Max float64
}

func (s *MinMaxScaler) Fit(vals []float64) {
	valid := compactValid(vals)
	if len(valid) == 0 {
		s.Min, s.Max = 0, 0
		return
	}
	s.Min, s.Max = valid[0], valid[0]
	for _, v := range valid[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
}

func (s *MinMaxScaler) Transform(vals []float64) []float64 {
	out := make([]float64, len(vals))
	span := s.Max - s.Min
	for i, v := range vals {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case span == 0:
			out[i] = 0
		default:
			out[i] = (v - s.Min) / span
		}
	}
	return out
}

// StandardScaler centres on the mean and scales by standard deviation.
type StandardScaler struct {
	Mean float64
	Std  float64
}

func (s *StandardScaler) Fit(vals []float64) {
	valid := compactValid(vals)
	if len(valid) < 2 {
		s.Mean, s.Std = 0, 0
		return
	}
	s.Mean, s.Std = stat.MeanStdDev(valid, nil)
}

func (s *StandardScaler) Transform(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case s.Std == 0:
			out[i] = 0
		default:
			out[i] = (v - s.Mean) / s.Std
		}
	}
	return out
}

// RobustScaler centres on the median and scales by the interquartile
// range, so it tolerates residual outliers.
type RobustScaler struct {
	Median float64
	IQR    float64
}

func (s *RobustScaler) Fit(vals []float64) {
	valid := compactValid(vals)
	if len(valid) == 0 {
		s.Median, s.IQR = 0, 0
		return
	}
	sort.Float64s(valid)
	s.Median = stat.Quantile(0.5, stat.Empirical, valid, nil)
	s.IQR = stat.Quantile(0.75, stat.Empirical, valid, nil) - stat.Quantile(0.25, stat.Empirical, valid, nil)
}

func (s *RobustScaler) Transform(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case s.IQR == 0:
			out[i] = 0
		default:
			out[i] = (v - s.Median) / s.IQR
		}
	}
	return out
}

// Normalize fits and applies the given scaler kind to each requested
// column of a cleaned series, returning scaled records plus the fitted
// scalers keyed by column for reuse within the run.
func Normalize(records []insect.ObservationRecord, cols []string, kind ScalerKind) ([]insect.ObservationRecord, map[string]Scaler, []insect.Diagnostic) {
	out := insect.CloneRecords(records)
	fitted := make(map[string]Scaler, len(cols))
	var diags []insect.Diagnostic

	if kind == ScalerNone {
		return out, fitted, diags
	}
	for _, name := range cols {
		if _, ok := columns[name]; !ok {
			diags = append(diags, insect.Warnf("series", "unknown column %q skipped", name))
			continue
		}
		sc := NewScaler(kind)
		vals := extract(out, name)
		sc.Fit(vals)
		store(out, name, sc.Transform(vals))
		fitted[name] = sc
	}
	return out, fitted, diags
}
