package volume

import (
	"fmt"

	"github.com/df07/go-phase-functions/pkg/core"
)

// Gradient interpolates linearly from From to To along one world axis.
// Points with coordinate <= Start get From, points >= End get To.
type Gradient struct {
	Axis  int     // 0 = X, 1 = Y, 2 = Z
	Start float64 // Coordinate where the ramp begins
	End   float64 // Coordinate where the ramp ends
	From  float64
	To    float64
}

// NewGradient creates a linear ramp along axis between start and end
func NewGradient(axis int, start, end, from, to float64) (*Gradient, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("gradient: axis must be 0, 1 or 2, got %d: %w", axis, core.ErrInvalidConfig)
	}
	if end <= start {
		return nil, fmt.Errorf("gradient: end (%g) must be greater than start (%g): %w", end, start, core.ErrInvalidConfig)
	}
	return &Gradient{Axis: axis, Start: start, End: end, From: from, To: to}, nil
}

// Evaluate returns the ramp value at the point's coordinate along the axis
func (g *Gradient) Evaluate(point core.Vec3) float64 {
	t := core.Clamp((point.Axis(g.Axis)-g.Start)/(g.End-g.Start), 0, 1)
	return g.From*(1.0-t) + g.To*t
}

// Traverse exposes the end values of the ramp
func (g *Gradient) Traverse(cb core.TraversalCallback) {
	cb.PutParameter("from", &g.From, core.Differentiable)
	cb.PutParameter("to", &g.To, core.Differentiable)
}

func (g *Gradient) String() string {
	return fmt.Sprintf("Gradient[axis=%d, range=[%g, %g], from=%g, to=%g]", g.Axis, g.Start, g.End, g.From, g.To)
}
