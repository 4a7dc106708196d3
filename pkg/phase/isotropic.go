package phase

import (
	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
)

// Isotropic scatters uniformly over the sphere
type Isotropic struct {
	base
}

// NewIsotropic creates an isotropic phase function
func NewIsotropic() *Isotropic {
	return &Isotropic{base: newLeafBase(FlagIsotropic)}
}

// Sample draws a uniform direction on the sphere. sample1 is unused.
func (p *Isotropic) Sample(ctx Context, mi *medium.Interaction, sample1 float64, sample2 core.Vec2) SampleResult {
	return SampleResult{
		Direction: core.SampleOnUnitSphere(sample2),
		PDF:       core.InvFourPi,
	}
}

// Eval returns 1/(4π) for every direction
func (p *Isotropic) Eval(ctx Context, mi *medium.Interaction, wo core.Vec3) float64 {
	return core.InvFourPi
}

// Traverse does nothing; the isotropic phase function has no parameters
func (p *Isotropic) Traverse(cb core.TraversalCallback) {}

func (p *Isotropic) String() string {
	return "Isotropic[]"
}
