// Package insect holds the shared record types and error taxonomy for the
// insect activity pipeline. Detection filtering, series cleaning and
// activity aggregation all operate on ObservationRecord rows.
package insect

import "time"

// ObservationRecord is one row per observation cycle. Position and
// confidence fields are nil when the cycle produced no detection; a nil
// position must never be conflated with (0,0).
type ObservationRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	Sequence       int64     `json:"sequence"`
	DetectionCount int       `json:"detection_count"`
	Detected       bool      `json:"detected"`
	CenterX        *float64  `json:"center_x"`
	CenterY        *float64  `json:"center_y"`
	MeanConfidence *float64  `json:"mean_confidence"`
	MaxConfidence  *float64  `json:"max_confidence"`
	BoxArea        *float64  `json:"box_area"`
	ProcessTimeMs  float64   `json:"process_time_ms"`
}

// HasPosition reports whether the record carries a usable position.
func (r *ObservationRecord) HasPosition() bool {
	return r.CenterX != nil && r.CenterY != nil
}

// Clone returns a deep copy so pipeline stages can produce new rows
// without mutating their input snapshot.
func (r ObservationRecord) Clone() ObservationRecord {
	out := r
	out.CenterX = clonePtr(r.CenterX)
	out.CenterY = clonePtr(r.CenterY)
	out.MeanConfidence = clonePtr(r.MeanConfidence)
	out.MaxConfidence = clonePtr(r.MaxConfidence)
	out.BoxArea = clonePtr(r.BoxArea)
	return out
}

// CloneRecords deep-copies a slice of records.
func CloneRecords(records []ObservationRecord) []ObservationRecord {
	out := make([]ObservationRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float64Ptr returns a pointer to v. Convenience for building records.
func Float64Ptr(v float64) *float64 { return &v }
