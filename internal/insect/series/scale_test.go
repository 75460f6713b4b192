package series

import (
	"math"
	"testing"
	"time"

	"github.com/banshee-data/activity.report/internal/insect"
)

func TestMinMaxScaler(t *testing.T) {
	t.Parallel()

	s := &MinMaxScaler{}
	s.Fit([]float64{10, 20, 30})
	out := s.Transform([]float64{10, 20, 30})
	if out[0] != 0 || out[1] != 0.5 || out[2] != 1 {
		t.Errorf("Transform = %v, want [0 0.5 1]", out)
	}

	t.Run("constant column maps to zero", func(t *testing.T) {
		c := &MinMaxScaler{}
		c.Fit([]float64{5, 5, 5})
		if out := c.Transform([]float64{5}); out[0] != 0 {
			t.Errorf("constant Transform = %v, want 0", out[0])
		}
	})

	t.Run("NaN passes through", func(t *testing.T) {
		out := s.Transform([]float64{math.NaN()})
		if !math.IsNaN(out[0]) {
			t.Errorf("NaN became %v", out[0])
		}
	})
}

func TestStandardScaler(t *testing.T) {
	t.Parallel()

	s := &StandardScaler{}
	vals := []float64{2, 4, 6, 8}
	s.Fit(vals)
	out := s.Transform(vals)

	var mean float64
	for _, v := range out {
		mean += v
	}
	mean /= float64(len(out))
	if math.Abs(mean) > 1e-12 {
		t.Errorf("scaled mean = %v, want 0", mean)
	}
}

func TestRobustScaler(t *testing.T) {
	t.Parallel()

	s := &RobustScaler{}
	s.Fit([]float64{1, 2, 3, 4, 100})
	if s.Median != 3 {
		t.Errorf("Median = %v, want 3", s.Median)
	}
	out := s.Transform([]float64{3})
	if out[0] != 0 {
		t.Errorf("median transforms to %v, want 0", out[0])
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	records := []insect.ObservationRecord{
		rec(0, 10),
		rec(1*time.Minute, 20),
		rec(2*time.Minute, 30),
	}

	t.Run("none is a no-op", func(t *testing.T) {
		t.Parallel()
		out, fitted, diags := Normalize(records, []string{"center_x"}, ScalerNone)
		if len(fitted) != 0 || len(diags) != 0 {
			t.Errorf("ScalerNone fitted %d scalers, %d diags", len(fitted), len(diags))
		}
		if *out[0].CenterX != 10 {
			t.Errorf("value changed under ScalerNone: %v", *out[0].CenterX)
		}
	})

	t.Run("minmax scales in place copy", func(t *testing.T) {
		t.Parallel()
		out, fitted, _ := Normalize(records, []string{"center_x"}, ScalerMinMax)
		if *out[0].CenterX != 0 || *out[2].CenterX != 1 {
			t.Errorf("scaled range = [%v, %v], want [0, 1]", *out[0].CenterX, *out[2].CenterX)
		}
		if _, ok := fitted["center_x"]; !ok {
			t.Error("fitted scaler not returned")
		}
		// Input untouched.
		if *records[0].CenterX != 10 {
			t.Error("Normalize mutated its input")
		}
	})

	t.Run("unknown column warns", func(t *testing.T) {
		t.Parallel()
		_, _, diags := Normalize(records, []string{"antennae"}, ScalerMinMax)
		if len(diags) != 1 || diags[0].Level != insect.LevelWarn {
			t.Errorf("want one warn diagnostic, got %v", diags)
		}
	})
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	if s, err := ParseStrategy(""); err != nil || s != StrategyZScore {
		t.Errorf("ParseStrategy(\"\") = %v, %v; want zscore default", s, err)
	}
	if _, err := ParseStrategy("mahalanobis"); err == nil {
		t.Error("unknown strategy accepted")
	}
	if p, err := ParsePolicy("clip"); err != nil || p != PolicyClip {
		t.Errorf("ParsePolicy(clip) = %v, %v", p, err)
	}
	if _, err := ParsePolicy("ignore"); err == nil {
		t.Error("unknown policy accepted")
	}
	if k, err := ParseScaler("robust"); err != nil || k != ScalerRobust {
		t.Errorf("ParseScaler(robust) = %v, %v", k, err)
	}
	if _, err := ParseScaler("log"); err == nil {
		t.Error("unknown scaler accepted")
	}
}
