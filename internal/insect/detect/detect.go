// Package detect filters and deduplicates raw per-frame detections and
// synthesizes the per-cycle ObservationRecord the rest of the pipeline
// consumes.
package detect

import (
	"time"

	"github.com/banshee-data/activity.report/internal/insect"
	"github.com/banshee-data/activity.report/internal/insect/geom"
)

// RawDetection is one bounding box from one inference call. Immutable;
// produced by the inference collaborator, consumed and discarded here.
type RawDetection struct {
	Box        geom.Box
	Confidence float64
	ClassID    int
	Timestamp  time.Time
}

// PositionMode selects how the representative position of a cycle is
// synthesized from the surviving detections.
type PositionMode int

const (
	// PositionMean averages the surviving detection centres.
	PositionMean PositionMode = iota
	// PositionBest takes the centre of the highest-confidence detection.
	PositionBest
)

// Config holds the resolved filter parameters for one run.
type Config struct {
	ConfidenceThreshold float64 // inclusive lower bound
	MinBoxSize          float64 // minimum width and height, pixels
	MaxBoxSize          float64 // maximum width and height, pixels
	IoUThreshold        float64 // duplicate suppression threshold
	PositionMode        PositionMode
}

// Result is the outcome of filtering one observation cycle.
type Result struct {
	Kept []RawDetection

	// Quality annotation across the surviving detections. Zero when
	// nothing survived.
	MeanConfidence float64
	MaxConfidence  float64
	QualityScore   float64

	// Item-level validation failures recovered during the cycle.
	Diagnostics []insect.Diagnostic
}

// validate rejects malformed detections: confidence outside [0,1] or
// non-positive extents. Returns nil for a well-formed detection.
func validate(d RawDetection) *insect.ValidationError {
	if d.Confidence < 0 || d.Confidence > 1 {
		return &insect.ValidationError{Field: "confidence", Reason: "outside [0,1]"}
	}
	if d.Box.Width <= 0 || d.Box.Height <= 0 {
		return &insect.ValidationError{Field: "box", Reason: "non-positive width or height"}
	}
	return nil
}

// Filter applies the confidence, size and duplicate-suppression rules to
// one cycle of raw detections. Malformed items are skipped with a
// diagnostic; the cycle never aborts. Counters for each rule are
// accumulated into stats when non-nil.
//
// Filtering is idempotent: running the output back through with the same
// config returns it unchanged.
func Filter(raw []RawDetection, cfg Config, stats *Stats) Result {
	var res Result
	survivors := make([]RawDetection, 0, len(raw))

	for i, d := range raw {
		if stats != nil {
			stats.addProcessed()
		}
		if verr := validate(d); verr != nil {
			if stats != nil {
				stats.addInvalid()
			}
			res.Diagnostics = append(res.Diagnostics,
				insect.Errorf("detect", "detection %d rejected: %v", i, verr))
			continue
		}
		if d.Confidence < cfg.ConfidenceThreshold {
			if stats != nil {
				stats.addLowConfidence()
			}
			continue
		}
		if d.Box.Width < cfg.MinBoxSize || d.Box.Height < cfg.MinBoxSize ||
			d.Box.Width > cfg.MaxBoxSize || d.Box.Height > cfg.MaxBoxSize {
			if stats != nil {
				stats.addBadSize()
			}
			continue
		}
		survivors = append(survivors, d)
	}

	// Pairwise IoU duplicate suppression. For each offending pair the
	// lower-confidence detection loses; on an exact tie the
	// later-indexed one loses, keeping the result order-stable.
	discarded := make([]bool, len(survivors))
	for i := 0; i < len(survivors); i++ {
		if discarded[i] {
			continue
		}
		for j := i + 1; j < len(survivors); j++ {
			if discarded[j] {
				continue
			}
			if geom.IoU(survivors[i].Box, survivors[j].Box) <= cfg.IoUThreshold {
				continue
			}
			if survivors[j].Confidence > survivors[i].Confidence {
				discarded[i] = true
			} else {
				discarded[j] = true
			}
			if stats != nil {
				stats.addDuplicate()
			}
			if discarded[i] {
				break
			}
		}
	}

	for i, d := range survivors {
		if !discarded[i] {
			res.Kept = append(res.Kept, d)
		}
	}
	if stats != nil {
		stats.addKept(len(res.Kept))
	}

	annotateQuality(&res)
	return res
}

// annotateQuality computes the mean/max confidence and a coarse quality
// score over the surviving detections. Annotation only; nothing is
// removed here.
func annotateQuality(res *Result) {
	if len(res.Kept) == 0 {
		return
	}
	var sum float64
	for _, d := range res.Kept {
		sum += d.Confidence
		if d.Confidence > res.MaxConfidence {
			res.MaxConfidence = d.Confidence
		}
	}
	res.MeanConfidence = sum / float64(len(res.Kept))

	// Quality is mean confidence damped by detection density: a cycle
	// with many surviving boxes for a single tracked insect is a noisy
	// cycle.
	res.QualityScore = res.MeanConfidence / float64(len(res.Kept))
}

// BuildObservation synthesizes the per-cycle row from a filter result.
// When nothing survived the position and confidence fields stay nil.
func BuildObservation(seq int64, ts time.Time, res Result, processTime time.Duration, mode PositionMode) insect.ObservationRecord {
	rec := insect.ObservationRecord{
		Timestamp:      ts,
		Sequence:       seq,
		DetectionCount: len(res.Kept),
		Detected:       len(res.Kept) > 0,
		ProcessTimeMs:  float64(processTime.Microseconds()) / 1000.0,
	}
	if len(res.Kept) == 0 {
		return rec
	}

	var cx, cy, area float64
	switch mode {
	case PositionBest:
		best := res.Kept[0]
		for _, d := range res.Kept[1:] {
			if d.Confidence > best.Confidence {
				best = d
			}
		}
		cx, cy = best.Box.CenterX, best.Box.CenterY
		area = best.Box.Area()
	default:
		for _, d := range res.Kept {
			cx += d.Box.CenterX
			cy += d.Box.CenterY
			area += d.Box.Area()
		}
		n := float64(len(res.Kept))
		cx /= n
		cy /= n
		area /= n
	}

	rec.CenterX = insect.Float64Ptr(cx)
	rec.CenterY = insect.Float64Ptr(cy)
	rec.MeanConfidence = insect.Float64Ptr(res.MeanConfidence)
	rec.MaxConfidence = insect.Float64Ptr(res.MaxConfidence)
	rec.BoxArea = insect.Float64Ptr(area)
	return rec
}
