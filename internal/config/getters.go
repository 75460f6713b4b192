package config

import (
	"math"
	"time"
)

// GetConfidenceThreshold returns the confidence_threshold value or the default.
func (c *TuningConfig) GetConfidenceThreshold() float64 {
	if c.ConfidenceThreshold == nil {
		return 0.5
	}
	return *c.ConfidenceThreshold
}

// GetMinBoxSize returns the min_box_size value or the default.
func (c *TuningConfig) GetMinBoxSize() float64 {
	if c.MinBoxSize == nil {
		return 4.0
	}
	return *c.MinBoxSize
}

// GetMaxBoxSize returns the max_box_size value or the default.
func (c *TuningConfig) GetMaxBoxSize() float64 {
	if c.MaxBoxSize == nil {
		return 600.0
	}
	return *c.MaxBoxSize
}

// GetIoUThreshold returns the iou_duplicate_threshold value or the default.
func (c *TuningConfig) GetIoUThreshold() float64 {
	if c.IoUThreshold == nil {
		return 0.7
	}
	return *c.IoUThreshold
}

// GetPositionMode returns the position_mode value or the default.
func (c *TuningConfig) GetPositionMode() string {
	if c.PositionMode == nil || *c.PositionMode == "" {
		return "mean"
	}
	return *c.PositionMode
}

// GetOutlierStrategy returns the outlier_strategy value or the default.
func (c *TuningConfig) GetOutlierStrategy() string {
	if c.OutlierStrategy == nil || *c.OutlierStrategy == "" {
		return "zscore"
	}
	return *c.OutlierStrategy
}

// GetZScoreThreshold returns the zscore_threshold value or the default.
func (c *TuningConfig) GetZScoreThreshold() float64 {
	if c.ZScoreThreshold == nil {
		return 3.0
	}
	return *c.ZScoreThreshold
}

// GetIQRMultiplier returns the iqr_multiplier value or the default.
func (c *TuningConfig) GetIQRMultiplier() float64 {
	if c.IQRMultiplier == nil {
		return 1.5
	}
	return *c.IQRMultiplier
}

// GetDensityNeighbors returns the density_neighbors value or the default.
func (c *TuningConfig) GetDensityNeighbors() int {
	if c.DensityNeighbors == nil {
		return 5
	}
	return *c.DensityNeighbors
}

// GetOutlierPolicy returns the outlier_policy value or the default.
func (c *TuningConfig) GetOutlierPolicy() string {
	if c.OutlierPolicy == nil || *c.OutlierPolicy == "" {
		return "interpolate"
	}
	return *c.OutlierPolicy
}

// GetSmoothingWindow returns the smoothing_window value or the default.
func (c *TuningConfig) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return 5
	}
	return *c.SmoothingWindow
}

// GetScaler returns the scaler value or the default.
func (c *TuningConfig) GetScaler() string {
	if c.Scaler == nil || *c.Scaler == "" {
		return "none"
	}
	return *c.Scaler
}

// GetFrameWidth returns the frame_width value or the default.
func (c *TuningConfig) GetFrameWidth() float64 {
	if c.FrameWidth == nil {
		return 1280.0
	}
	return *c.FrameWidth
}

// GetFrameHeight returns the frame_height value or the default.
func (c *TuningConfig) GetFrameHeight() float64 {
	if c.FrameHeight == nil {
		return 720.0
	}
	return *c.FrameHeight
}

// GetSpeedCeiling returns the speed_ceiling_px_per_min value. When the
// value is unset or zero the ceiling derives from the frame geometry:
// half the frame diagonal per minute.
func (c *TuningConfig) GetSpeedCeiling() float64 {
	if c.SpeedCeiling != nil && *c.SpeedCeiling > 0 {
		return *c.SpeedCeiling
	}
	return math.Hypot(c.GetFrameWidth(), c.GetFrameHeight()) / 2
}

// GetObservationInterval parses and returns the observation_interval.
func (c *TuningConfig) GetObservationInterval() time.Duration {
	if c.ObservationInterval == nil || *c.ObservationInterval == "" {
		return time.Minute
	}
	d, err := time.ParseDuration(*c.ObservationInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

// GetRollupInterval parses and returns the rollup_interval.
func (c *TuningConfig) GetRollupInterval() time.Duration {
	if c.RollupInterval == nil || *c.RollupInterval == "" {
		return 15 * time.Minute
	}
	d, err := time.ParseDuration(*c.RollupInterval)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetTimezone returns the configured timezone name or "UTC".
func (c *TuningConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return "UTC"
	}
	return *c.Timezone
}

// GetLocation returns the configured timezone or UTC.
func (c *TuningConfig) GetLocation() *time.Location {
	if c.Timezone == nil || *c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(*c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
