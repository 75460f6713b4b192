package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/activity.report/internal/insect"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
func s(v string) *string   { return &v }

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       TuningConfig
		wantParam string // empty means valid
	}{
		{"empty is valid", TuningConfig{}, ""},
		{"confidence above 1", TuningConfig{ConfidenceThreshold: f(1.2)}, "confidence_threshold"},
		{"confidence negative", TuningConfig{ConfidenceThreshold: f(-0.1)}, "confidence_threshold"},
		{"iou zero", TuningConfig{IoUThreshold: f(0)}, "iou_duplicate_threshold"},
		{"max box below min", TuningConfig{MinBoxSize: f(10), MaxBoxSize: f(5)}, "max_box_size"},
		{"bad position mode", TuningConfig{PositionMode: s("median")}, "position_mode"},
		{"bad strategy", TuningConfig{OutlierStrategy: s("mad")}, "outlier_strategy"},
		{"bad policy", TuningConfig{OutlierPolicy: s("ignore")}, "outlier_policy"},
		{"bad scaler", TuningConfig{Scaler: s("log")}, "scaler"},
		{"zscore non-positive", TuningConfig{ZScoreThreshold: f(0)}, "zscore_threshold"},
		{"iqr non-positive", TuningConfig{IQRMultiplier: f(-1)}, "iqr_multiplier"},
		{"density below 1", TuningConfig{DensityNeighbors: i(0)}, "density_neighbors"},
		{"even smoothing window", TuningConfig{SmoothingWindow: i(4)}, "smoothing_window"},
		{"zero smoothing window ok", TuningConfig{SmoothingWindow: i(0)}, ""},
		{"odd smoothing window ok", TuningConfig{SmoothingWindow: i(7)}, ""},
		{"frame width zero", TuningConfig{FrameWidth: f(0)}, "frame_width"},
		{"negative speed ceiling", TuningConfig{SpeedCeiling: f(-5)}, "speed_ceiling_px_per_min"},
		{"unparseable interval", TuningConfig{ObservationInterval: s("soon")}, "observation_interval"},
		{"negative interval", TuningConfig{RollupInterval: s("-5m")}, "rollup_interval"},
		{"unknown timezone", TuningConfig{Timezone: s("Mars/Olympus")}, "timezone"},
		{"known timezone ok", TuningConfig{Timezone: s("Europe/Berlin")}, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantParam == "" {
				assert.NoError(t, err)
				return
			}
			var cerr *insect.ConfigurationError
			require.True(t, errors.As(err, &cerr), "error %v is not a ConfigurationError", err)
			assert.Equal(t, tt.wantParam, cerr.Param)
		})
	}
}

func TestLoadTuningConfig(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"confidence_threshold": 0.6,
			"outlier_strategy": "iqr",
			"timezone": "UTC"
		}`), 0o644))

		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 0.6, cfg.GetConfidenceThreshold())
		assert.Equal(t, "iqr", cfg.GetOutlierStrategy())
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects invalid parameter at load time", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"smoothing_window": 6}`), 0o644))
		_, err := LoadTuningConfig(path)
		var cerr *insect.ConfigurationError
		assert.True(t, errors.As(err, &cerr))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := EmptyTuningConfig()

	assert.Equal(t, 0.5, cfg.GetConfidenceThreshold())
	assert.Equal(t, 4.0, cfg.GetMinBoxSize())
	assert.Equal(t, 600.0, cfg.GetMaxBoxSize())
	assert.Equal(t, 0.7, cfg.GetIoUThreshold())
	assert.Equal(t, "mean", cfg.GetPositionMode())
	assert.Equal(t, "zscore", cfg.GetOutlierStrategy())
	assert.Equal(t, 3.0, cfg.GetZScoreThreshold())
	assert.Equal(t, 1.5, cfg.GetIQRMultiplier())
	assert.Equal(t, 5, cfg.GetDensityNeighbors())
	assert.Equal(t, "interpolate", cfg.GetOutlierPolicy())
	assert.Equal(t, 5, cfg.GetSmoothingWindow())
	assert.Equal(t, "none", cfg.GetScaler())
	assert.Equal(t, 1280.0, cfg.GetFrameWidth())
	assert.Equal(t, 720.0, cfg.GetFrameHeight())
	assert.Equal(t, time.Minute, cfg.GetObservationInterval())
	assert.Equal(t, 15*time.Minute, cfg.GetRollupInterval())
	assert.Equal(t, "UTC", cfg.GetTimezone())
	assert.Equal(t, time.UTC, cfg.GetLocation())
}

func TestGetSpeedCeiling(t *testing.T) {
	t.Parallel()

	t.Run("derived from frame diagonal", func(t *testing.T) {
		t.Parallel()
		cfg := EmptyTuningConfig()
		want := math.Hypot(1280, 720) / 2
		assert.InDelta(t, want, cfg.GetSpeedCeiling(), 1e-9)
	})

	t.Run("explicit value wins", func(t *testing.T) {
		t.Parallel()
		cfg := &TuningConfig{SpeedCeiling: f(250)}
		assert.Equal(t, 250.0, cfg.GetSpeedCeiling())
	})
}

func TestShippedDefaultsFileIsValid(t *testing.T) {
	t.Parallel()

	cfg := MustLoadDefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.GetConfidenceThreshold())
}
