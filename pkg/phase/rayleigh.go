package phase

import (
	"math"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
)

// Rayleigh is the phase function for scattering by particles much smaller
// than the wavelength, e.g. air molecules
type Rayleigh struct {
	base
}

// NewRayleigh creates a Rayleigh phase function
func NewRayleigh() *Rayleigh {
	return &Rayleigh{base: newLeafBase(FlagAnisotropic)}
}

func evalRayleigh(cosTheta float64) float64 {
	return (3.0 / 16.0) / math.Pi * (1 + cosTheta*cosTheta)
}

// Sample inverts the Rayleigh CDF in closed form. sample1 is unused.
func (p *Rayleigh) Sample(ctx Context, mi *medium.Interaction, sample1 float64, sample2 core.Vec2) SampleResult {
	// Solve cos^3 + 3cos = 4(2u - 1) with Cardano's formula
	z := 2 * (2*sample2.X - 1)
	tmp := math.Sqrt(z*z + 1)
	cosTheta := core.Clamp(math.Cbrt(z+tmp)+math.Cbrt(z-tmp), -1, 1)

	phi := 2 * math.Pi * sample2.Y
	local := core.SphericalDirection(cosTheta, phi)

	return SampleResult{
		Direction: mi.ToWorld(local),
		PDF:       evalRayleigh(cosTheta),
	}
}

// Eval returns the Rayleigh density for outgoing direction wo
func (p *Rayleigh) Eval(ctx Context, mi *medium.Interaction, wo core.Vec3) float64 {
	return evalRayleigh(wo.Dot(mi.Wi))
}

// Traverse does nothing; the Rayleigh phase function has no parameters
func (p *Rayleigh) Traverse(cb core.TraversalCallback) {}

func (p *Rayleigh) String() string {
	return "Rayleigh[]"
}
