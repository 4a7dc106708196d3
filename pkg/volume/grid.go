package volume

import (
	"fmt"
	"math"

	"github.com/df07/go-phase-functions/pkg/core"
)

// Grid is a voxel grid spanning Bounds, sampled with trilinear
// interpolation. Data is stored X-fastest; samples sit on voxel corners so
// the first and last samples along an axis lie on the box faces.
// Points outside Bounds are clamped to the nearest face.
type Grid struct {
	Bounds     core.AABB
	Resolution [3]int
	Data       []float64
}

// NewGrid creates a grid field, validating the resolution against the data
func NewGrid(bounds core.AABB, resolution [3]int, data []float64) (*Grid, error) {
	for axis := 0; axis < 3; axis++ {
		lo, hi := bounds.Min.Axis(axis), bounds.Max.Axis(axis)
		if !isFinite(lo) || !isFinite(hi) {
			return nil, fmt.Errorf("grid: bounds along axis %d must be finite, got %g..%g: %w", axis, lo, hi, core.ErrInvalidConfig)
		}
	}
	if !bounds.IsValid() {
		return nil, fmt.Errorf("grid: bounds min %v exceeds max %v: %w", bounds.Min, bounds.Max, core.ErrInvalidConfig)
	}
	count := 1
	for axis, n := range resolution {
		if n < 1 {
			return nil, fmt.Errorf("grid: resolution along axis %d must be positive, got %d: %w", axis, n, core.ErrInvalidConfig)
		}
		count *= n
	}
	if len(data) != count {
		return nil, fmt.Errorf("grid: resolution %v needs %d values, got %d: %w", resolution, count, len(data), core.ErrInvalidConfig)
	}
	return &Grid{Bounds: bounds, Resolution: resolution, Data: data}, nil
}

// Evaluate returns the trilinearly interpolated value at point
func (g *Grid) Evaluate(point core.Vec3) float64 {
	offset := g.Bounds.Offset(point).Clamp(0, 1)

	var i0, i1 [3]int
	var frac [3]float64
	for axis := 0; axis < 3; axis++ {
		n := g.Resolution[axis]
		t := offset.Axis(axis)
		if math.IsNaN(t) {
			t = 0
		}
		x := t * float64(n-1)
		base := math.Floor(x)
		i0[axis] = max(0, min(int(base), n-1))
		i1[axis] = min(i0[axis]+1, n-1)
		frac[axis] = x - float64(i0[axis])
	}

	var result float64
	for corner := 0; corner < 8; corner++ {
		weight := 1.0
		var idx [3]int
		for axis := 0; axis < 3; axis++ {
			if corner&(1<<axis) != 0 {
				idx[axis] = i1[axis]
				weight *= frac[axis]
			} else {
				idx[axis] = i0[axis]
				weight *= 1 - frac[axis]
			}
		}
		if weight == 0 {
			continue
		}
		result += weight * g.at(idx[0], idx[1], idx[2])
	}
	return result
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (g *Grid) at(x, y, z int) float64 {
	return g.Data[(z*g.Resolution[1]+y)*g.Resolution[0]+x]
}

// Traverse does nothing; grid data is not exposed as scalar parameters
func (g *Grid) Traverse(cb core.TraversalCallback) {}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid[bounds=%v..%v, resolution=%v]", g.Bounds.Min, g.Bounds.Max, g.Resolution)
}
