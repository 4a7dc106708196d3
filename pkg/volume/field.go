// Package volume provides spatially varying scalar fields, such as the
// weight that blends two phase functions.
package volume

import (
	"fmt"

	"github.com/df07/go-phase-functions/pkg/core"
)

// Field provides a spatially-varying scalar.
// Consumers must not assume the returned value lies in any particular range.
type Field interface {
	// Evaluate returns the field value at a world-space point
	Evaluate(point core.Vec3) float64
	core.Traversable
}

// Constant provides the same value everywhere
type Constant struct {
	Value float64
}

// NewConstant creates a new constant field
func NewConstant(value float64) *Constant {
	return &Constant{Value: value}
}

// Evaluate returns the constant value regardless of position
func (c *Constant) Evaluate(point core.Vec3) float64 {
	return c.Value
}

// Traverse exposes the value
func (c *Constant) Traverse(cb core.TraversalCallback) {
	cb.PutParameter("value", &c.Value, core.Differentiable)
}

func (c *Constant) String() string {
	return fmt.Sprintf("Constant[value=%g]", c.Value)
}
