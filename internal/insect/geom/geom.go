// Package geom provides bounding-box geometry for detection
// post-processing: area, axis-aligned intersection and
// Intersection-over-Union.
package geom

import "math"

// Box is an axis-aligned bounding box in pixel coordinates, stored as
// centre position plus extents. This matches the format the inference
// engine emits.
type Box struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
}

// Area returns the box area in square pixels. Non-positive extents give
// zero, never a negative area.
func (b Box) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Left, Right, Top and Bottom are the box edges in pixel coordinates.
func (b Box) Left() float64   { return b.CenterX - b.Width/2 }
func (b Box) Right() float64  { return b.CenterX + b.Width/2 }
func (b Box) Top() float64    { return b.CenterY - b.Height/2 }
func (b Box) Bottom() float64 { return b.CenterY + b.Height/2 }

// Intersection returns the overlap area of two boxes, zero when they do
// not overlap.
func Intersection(a, b Box) float64 {
	w := math.Min(a.Right(), b.Right()) - math.Max(a.Left(), b.Left())
	if w <= 0 {
		return 0
	}
	h := math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Top(), b.Top())
	if h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the Intersection-over-Union of two boxes in [0,1]. Two
// degenerate (zero-area) boxes have IoU 0.
func IoU(a, b Box) float64 {
	inter := Intersection(a, b)
	if inter <= 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Distance returns the Euclidean distance between two box centres.
func Distance(a, b Box) float64 {
	dx := b.CenterX - a.CenterX
	dy := b.CenterY - a.CenterY
	return math.Hypot(dx, dy)
}

// FrameDiagonal returns the pixel diagonal of a frame. Half of it per
// minute is the default movement speed ceiling.
func FrameDiagonal(width, height float64) float64 {
	return math.Hypot(width, height)
}
