// Package config loads and validates the pipeline tuning parameters.
// Fields are pointers so partial JSON configs are safe: anything
// omitted falls back to the documented default via the Get* accessors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/insect/series"
	"github.com/banshee-data/activity.report/internal/units"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for the detection and
// analytics pipeline. The schema doubles as the /api/params payload so
// the same JSON works for startup configuration and runtime inspection.
type TuningConfig struct {
	// Detection filter params
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	MinBoxSize          *float64 `json:"min_box_size,omitempty"`
	MaxBoxSize          *float64 `json:"max_box_size,omitempty"`
	IoUThreshold        *float64 `json:"iou_duplicate_threshold,omitempty"`
	PositionMode        *string  `json:"position_mode,omitempty"` // "mean" or "best"

	// Series cleaning params
	OutlierStrategy  *string  `json:"outlier_strategy,omitempty"` // zscore, iqr, density
	ZScoreThreshold  *float64 `json:"zscore_threshold,omitempty"`
	IQRMultiplier    *float64 `json:"iqr_multiplier,omitempty"`
	DensityNeighbors *int     `json:"density_neighbors,omitempty"`
	OutlierPolicy    *string  `json:"outlier_policy,omitempty"` // interpolate, remove, clip
	SmoothingWindow  *int     `json:"smoothing_window,omitempty"`
	Scaler           *string  `json:"scaler,omitempty"` // none, minmax, standard, robust

	// Movement params
	FrameWidth          *float64 `json:"frame_width,omitempty"`
	FrameHeight         *float64 `json:"frame_height,omitempty"`
	SpeedCeiling        *float64 `json:"speed_ceiling_px_per_min,omitempty"` // 0 = derive from frame diagonal
	ObservationInterval *string  `json:"observation_interval,omitempty"`    // duration string like "1m"

	// Rollup params
	RollupInterval *string `json:"rollup_interval,omitempty"` // duration string like "15m"
	Timezone       *string `json:"timezone,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields nil. Use
// LoadTuningConfig to load values from a defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file and validates
// it. Invalid parameters fail here, at load time, never deep inside a
// pipeline run.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from
// DefaultConfigPath, searching upward from the current directory.
// Panics on failure; intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/insect/*/
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks every set field. Returns a ConfigurationError naming
// the offending parameter.
func (c *TuningConfig) Validate() error {
	if c.ConfidenceThreshold != nil {
		if *c.ConfidenceThreshold < 0 || *c.ConfidenceThreshold > 1 {
			return &insect.ConfigurationError{Param: "confidence_threshold",
				Reason: fmt.Sprintf("must be in [0,1], got %f", *c.ConfidenceThreshold)}
		}
	}
	if c.IoUThreshold != nil {
		if *c.IoUThreshold <= 0 || *c.IoUThreshold > 1 {
			return &insect.ConfigurationError{Param: "iou_duplicate_threshold",
				Reason: fmt.Sprintf("must be in (0,1], got %f", *c.IoUThreshold)}
		}
	}
	if c.MinBoxSize != nil && *c.MinBoxSize < 0 {
		return &insect.ConfigurationError{Param: "min_box_size",
			Reason: fmt.Sprintf("must be non-negative, got %f", *c.MinBoxSize)}
	}
	if c.MaxBoxSize != nil {
		min := 0.0
		if c.MinBoxSize != nil {
			min = *c.MinBoxSize
		}
		if *c.MaxBoxSize <= min {
			return &insect.ConfigurationError{Param: "max_box_size",
				Reason: fmt.Sprintf("must exceed min_box_size, got %f", *c.MaxBoxSize)}
		}
	}
	if c.PositionMode != nil && *c.PositionMode != "mean" && *c.PositionMode != "best" {
		return &insect.ConfigurationError{Param: "position_mode",
			Reason: fmt.Sprintf("want mean or best, got %q", *c.PositionMode)}
	}

	if c.OutlierStrategy != nil {
		if _, err := series.ParseStrategy(*c.OutlierStrategy); err != nil {
			return &insect.ConfigurationError{Param: "outlier_strategy", Reason: err.Error()}
		}
	}
	if c.OutlierPolicy != nil {
		if _, err := series.ParsePolicy(*c.OutlierPolicy); err != nil {
			return &insect.ConfigurationError{Param: "outlier_policy", Reason: err.Error()}
		}
	}
	if c.Scaler != nil {
		if _, err := series.ParseScaler(*c.Scaler); err != nil {
			return &insect.ConfigurationError{Param: "scaler", Reason: err.Error()}
		}
	}
	if c.ZScoreThreshold != nil && *c.ZScoreThreshold <= 0 {
		return &insect.ConfigurationError{Param: "zscore_threshold",
			Reason: fmt.Sprintf("must be positive, got %f", *c.ZScoreThreshold)}
	}
	if c.IQRMultiplier != nil && *c.IQRMultiplier <= 0 {
		return &insect.ConfigurationError{Param: "iqr_multiplier",
			Reason: fmt.Sprintf("must be positive, got %f", *c.IQRMultiplier)}
	}
	if c.DensityNeighbors != nil && *c.DensityNeighbors < 1 {
		return &insect.ConfigurationError{Param: "density_neighbors",
			Reason: fmt.Sprintf("must be at least 1, got %d", *c.DensityNeighbors)}
	}
	if c.SmoothingWindow != nil {
		w := *c.SmoothingWindow
		if w < 0 || (w > 0 && w%2 == 0) {
			return &insect.ConfigurationError{Param: "smoothing_window",
				Reason: fmt.Sprintf("must be zero or a positive odd number, got %d", w)}
		}
	}

	if c.FrameWidth != nil && *c.FrameWidth <= 0 {
		return &insect.ConfigurationError{Param: "frame_width",
			Reason: fmt.Sprintf("must be positive, got %f", *c.FrameWidth)}
	}
	if c.FrameHeight != nil && *c.FrameHeight <= 0 {
		return &insect.ConfigurationError{Param: "frame_height",
			Reason: fmt.Sprintf("must be positive, got %f", *c.FrameHeight)}
	}
	if c.SpeedCeiling != nil && *c.SpeedCeiling < 0 {
		return &insect.ConfigurationError{Param: "speed_ceiling_px_per_min",
			Reason: fmt.Sprintf("must be non-negative, got %f", *c.SpeedCeiling)}
	}

	if err := validateDuration("observation_interval", c.ObservationInterval); err != nil {
		return err
	}
	if err := validateDuration("rollup_interval", c.RollupInterval); err != nil {
		return err
	}
	if c.Timezone != nil && *c.Timezone != "" {
		if !units.IsTimezoneValid(*c.Timezone) {
			return &insect.ConfigurationError{Param: "timezone",
				Reason: fmt.Sprintf("unknown timezone %q", *c.Timezone)}
		}
	}
	return nil
}

func validateDuration(param string, v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return &insect.ConfigurationError{Param: param, Reason: err.Error()}
	}
	if d <= 0 {
		return &insect.ConfigurationError{Param: param,
			Reason: fmt.Sprintf("must be positive, got %s", d)}
	}
	return nil
}
