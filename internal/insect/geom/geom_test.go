package geom

import (
	"math"
	"testing"
)

func TestArea(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		box  Box
		want float64
	}{
		{"square", Box{CenterX: 10, CenterY: 10, Width: 50, Height: 50}, 2500},
		{"rectangle", Box{Width: 20, Height: 5}, 100},
		{"zero width", Box{Width: 0, Height: 10}, 0},
		{"negative extent", Box{Width: -5, Height: 10}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.box.Area(); got != tt.want {
				t.Errorf("Area() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersection(t *testing.T) {
	t.Parallel()

	a := Box{CenterX: 100, CenterY: 100, Width: 50, Height: 50}

	t.Run("identical boxes", func(t *testing.T) {
		if got := Intersection(a, a); got != 2500 {
			t.Errorf("Intersection(a, a) = %v, want 2500", got)
		}
	})

	t.Run("disjoint boxes", func(t *testing.T) {
		b := Box{CenterX: 300, CenterY: 300, Width: 50, Height: 50}
		if got := Intersection(a, b); got != 0 {
			t.Errorf("Intersection = %v, want 0", got)
		}
	})

	t.Run("touching edges", func(t *testing.T) {
		b := Box{CenterX: 150, CenterY: 100, Width: 50, Height: 50}
		if got := Intersection(a, b); got != 0 {
			t.Errorf("Intersection of edge-touching boxes = %v, want 0", got)
		}
	})
}

func TestIoU(t *testing.T) {
	t.Parallel()

	a := Box{CenterX: 100, CenterY: 100, Width: 50, Height: 50}

	t.Run("identical boxes give 1", func(t *testing.T) {
		if got := IoU(a, a); got != 1 {
			t.Errorf("IoU(a, a) = %v, want 1", got)
		}
	})

	t.Run("shifted box", func(t *testing.T) {
		// 5px horizontal shift: intersection 45*50=2250,
		// union 2500+2500-2250=2750.
		b := Box{CenterX: 105, CenterY: 100, Width: 50, Height: 50}
		want := 2250.0 / 2750.0
		if got := IoU(a, b); math.Abs(got-want) > 1e-12 {
			t.Errorf("IoU = %v, want %v", got, want)
		}
	})

	t.Run("degenerate boxes give 0", func(t *testing.T) {
		z := Box{CenterX: 100, CenterY: 100}
		if got := IoU(z, z); got != 0 {
			t.Errorf("IoU of zero-area boxes = %v, want 0", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		b := Box{CenterX: 110, CenterY: 95, Width: 40, Height: 60}
		if IoU(a, b) != IoU(b, a) {
			t.Error("IoU is not symmetric")
		}
	})
}

func TestDistance(t *testing.T) {
	t.Parallel()

	a := Box{CenterX: 0, CenterY: 0}
	b := Box{CenterX: 3, CenterY: 4}
	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestFrameDiagonal(t *testing.T) {
	t.Parallel()

	got := FrameDiagonal(1280, 720)
	want := math.Hypot(1280, 720)
	if got != want {
		t.Errorf("FrameDiagonal(1280, 720) = %v, want %v", got, want)
	}
}
