package phase

import (
	"fmt"
	"math"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
	"github.com/df07/go-phase-functions/pkg/volume"
)

// Blend linearly mixes two phase functions with a spatially varying weight.
// A weight of 0 selects the first phase function, 1 selects the second.
//
// Components are the first child's components followed by the second's.
type Blend struct {
	base
	phases [2]PhaseFunction
	weight volume.Field
}

// NewBlend creates a blend of exactly two phase functions
func NewBlend(weight volume.Field, phases ...PhaseFunction) (*Blend, error) {
	if len(phases) != 2 {
		return nil, fmt.Errorf("blend: exactly two nested phase functions are required, got %d: %w", len(phases), ErrInvalidConfig)
	}
	for i, p := range phases {
		if p == nil {
			return nil, fmt.Errorf("blend: nested phase function %d is nil: %w", i, ErrInvalidConfig)
		}
	}
	if weight == nil {
		return nil, fmt.Errorf("blend: a weight field is required: %w", ErrInvalidConfig)
	}

	b := &Blend{
		phases: [2]PhaseFunction{phases[0], phases[1]},
		weight: weight,
	}
	for _, p := range b.phases {
		for i := 0; i < p.ComponentCount(); i++ {
			b.components = append(b.components, p.ComponentFlags(i))
		}
	}
	b.flags = phases[0].Flags() | phases[1].Flags()
	return b, nil
}

// Phase returns nested phase function i (0 or 1)
func (b *Blend) Phase(i int) PhaseFunction {
	return b.phases[i]
}

// Weight returns the blend weight field
func (b *Blend) Weight() volume.Field {
	return b.weight
}

// evalWeight returns the weight of the second phase function at mi, clamped to [0, 1]
func (b *Blend) evalWeight(mi *medium.Interaction) float64 {
	w := b.weight.Evaluate(mi.Point)
	if math.IsNaN(w) {
		return 0
	}
	return core.Clamp(w, 0, 1)
}

// lobe maps a component index to the owning child, the child-local context
// and the child's mixture weight
func (b *Blend) lobe(ctx Context, w float64) (int, Context, float64) {
	n0 := b.phases[0].ComponentCount()
	if ctx.Component < n0 {
		return 0, ctx, 1 - w
	}
	ctx.Component -= n0
	return 1, ctx, w
}

// Sample draws a direction from one nested phase function.
//
// With all components selected, sample1 picks the child and is remapped to
// stay uniform for it. The returned PDF is the full mixture density of the
// drawn direction, so the unselected child's Eval is also called for that
// direction. The call is skipped when the unselected child's weight is 0.
//
// With a single component selected, the owning child is sampled
// deterministically and its PDF is scaled by the child's weight.
func (b *Blend) Sample(ctx Context, mi *medium.Interaction, sample1 float64, sample2 core.Vec2) SampleResult {
	w := b.evalWeight(mi)

	if ctx.IsComponentSelected() {
		idx, local, lobeWeight := b.lobe(ctx, w)
		result := b.phases[idx].Sample(local, mi, sample1, sample2)
		result.PDF *= lobeWeight
		return result
	}

	var idx int
	switch {
	case w <= 0:
		idx = 0
	case w >= 1:
		idx = 1
	case sample1 > w:
		idx = 0
		sample1 = min((sample1-w)/(1-w), core.OneMinusEpsilon)
	default:
		idx = 1
		sample1 = min(sample1/w, core.OneMinusEpsilon)
	}

	weights := [2]float64{1 - w, w}
	result := b.phases[idx].Sample(ctx, mi, sample1, sample2)
	result.PDF *= weights[idx]

	// The unselected child can also produce this direction
	other := 1 - idx
	if weights[other] > 0 {
		result.PDF += weights[other] * b.phases[other].Eval(ctx, mi, result.Direction)
	}
	return result
}

// Eval returns the weighted mixture density, or the weighted density of a
// single lobe when a component is selected
func (b *Blend) Eval(ctx Context, mi *medium.Interaction, wo core.Vec3) float64 {
	w := b.evalWeight(mi)

	if ctx.IsComponentSelected() {
		idx, local, lobeWeight := b.lobe(ctx, w)
		return lobeWeight * b.phases[idx].Eval(local, mi, wo)
	}

	return b.phases[0].Eval(ctx, mi, wo)*(1-w) + b.phases[1].Eval(ctx, mi, wo)*w
}

// Traverse exposes the weight field and both nested phase functions
func (b *Blend) Traverse(cb core.TraversalCallback) {
	cb.PutObject("weight", b.weight, core.Differentiable)
	cb.PutObject("phase_0", b.phases[0], core.Differentiable)
	cb.PutObject("phase_1", b.phases[1], core.Differentiable)
}

func (b *Blend) String() string {
	return fmt.Sprintf("Blend[weight=%v, phase_0=%v, phase_1=%v]", b.weight, b.phases[0], b.phases[1])
}
