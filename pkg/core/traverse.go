package core

import "errors"

// ErrInvalidConfig is wrapped by every construction-time rejection
var ErrInvalidConfig = errors.New("invalid configuration")

// ParamFlags classifies an exposed parameter for gradient-based optimization
type ParamFlags uint8

const (
	// Differentiable marks parameters that can receive gradients
	Differentiable ParamFlags = iota
	// NonDifferentiable marks parameters that are exposed for inspection
	// or update only
	NonDifferentiable
)

func (f ParamFlags) String() string {
	switch f {
	case Differentiable:
		return "differentiable"
	case NonDifferentiable:
		return "non-differentiable"
	default:
		return "unknown"
	}
}

// TraversalCallback receives the named parameters and child objects of a
// Traversable. Scalar parameters are passed by pointer so the caller can
// update them in place; see ParameterUpdater.
type TraversalCallback interface {
	PutParameter(name string, value *float64, flags ParamFlags)
	PutObject(name string, obj Traversable, flags ParamFlags)
}

// Traversable objects expose their parameters and children
type Traversable interface {
	Traverse(cb TraversalCallback)
}

// ParameterUpdater is implemented by objects that must revalidate or
// recompute state after parameters were written through traversal.
// Updates must not race with concurrent evaluation.
type ParameterUpdater interface {
	ParametersChanged(keys []string) error
}
