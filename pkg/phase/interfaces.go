// Package phase implements phase functions: the directional scattering
// densities of participating media.
//
// All phase functions are safe for concurrent Sample and Eval calls. The only
// mutation path is writing parameters exposed by Traverse, which callers must
// serialize against in-flight evaluation.
package phase

import (
	"strings"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
)

// ErrInvalidConfig is wrapped by every construction-time rejection
var ErrInvalidConfig = core.ErrInvalidConfig

// Flags classifies the scattering behavior of a phase function or lobe
type Flags uint32

const (
	FlagIsotropic Flags = 1 << iota
	FlagAnisotropic
)

// Has reports whether all bits of other are set
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	if f.Has(FlagIsotropic) {
		names = append(names, "isotropic")
	}
	if f.Has(FlagAnisotropic) {
		names = append(names, "anisotropic")
	}
	if rest := f &^ (FlagIsotropic | FlagAnisotropic); rest != 0 {
		names = append(names, "unknown")
	}
	return strings.Join(names, "|")
}

// AllComponents selects the full mixture rather than a single lobe
const AllComponents = -1

// Context carries per-call sampling state
type Context struct {
	// Component is AllComponents or an index into the flattened component
	// list. Indices >= ComponentCount() are undefined and not checked.
	Component int
}

// NewContext returns a context covering all components
func NewContext() Context {
	return Context{Component: AllComponents}
}

// ComponentContext returns a context selecting a single lobe
func ComponentContext(component int) Context {
	return Context{Component: component}
}

// IsComponentSelected reports whether a single lobe is selected
func (c Context) IsComponentSelected() bool {
	return c.Component != AllComponents
}

// SampleResult is a sampled outgoing direction and its solid-angle density
type SampleResult struct {
	Direction core.Vec3
	PDF       float64
}

// PhaseFunction describes how light scatters at a point in a medium
type PhaseFunction interface {
	// Sample draws an outgoing direction. PDF equals Eval for the returned
	// direction under the same context.
	Sample(ctx Context, mi *medium.Interaction, sample1 float64, sample2 core.Vec2) SampleResult

	// Eval returns the normalized density for outgoing direction wo
	Eval(ctx Context, mi *medium.Interaction, wo core.Vec3) float64

	// ComponentCount returns the number of individually addressable lobes
	ComponentCount() int

	// ComponentFlags returns the flags of lobe i
	ComponentFlags(i int) Flags

	// Flags returns the union of all lobe flags
	Flags() Flags

	core.Traversable
}

// base holds flags and the flattened component list
type base struct {
	flags      Flags
	components []Flags
}

// newLeafBase describes a phase function with a single lobe
func newLeafBase(flags Flags) base {
	return base{flags: flags, components: []Flags{flags}}
}

func (b *base) ComponentCount() int {
	return len(b.components)
}

func (b *base) ComponentFlags(i int) Flags {
	return b.components[i]
}

func (b *base) Flags() Flags {
	return b.flags
}
