package phase

import (
	"fmt"
	"math"
	"slices"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
)

// DefaultG is the asymmetry used when a description omits g
const DefaultG = 0.8

// hgIsotropicThreshold is the |g| below which sampling falls back to the
// uniform sphere; the closed-form inverse loses precision as g approaches 0
const hgIsotropicThreshold = 1e-6

// HenyeyGreenstein is the Henyey-Greenstein phase function.
// G is the mean cosine: positive values scatter forward, negative backward.
type HenyeyGreenstein struct {
	base
	g         float64
	lastValid float64
}

// NewHenyeyGreenstein creates an HG phase function with asymmetry g in (-1, 1)
func NewHenyeyGreenstein(g float64) (*HenyeyGreenstein, error) {
	if err := validateG(g); err != nil {
		return nil, err
	}
	// Anisotropic even at g = 0: g may be changed later through Traverse
	return &HenyeyGreenstein{
		base:      newLeafBase(FlagAnisotropic),
		g:         g,
		lastValid: g,
	}, nil
}

func validateG(g float64) error {
	if !(g > -1 && g < 1) {
		return fmt.Errorf("hg: asymmetry parameter g must lie in (-1, 1), got %g: %w", g, ErrInvalidConfig)
	}
	return nil
}

// G returns the asymmetry parameter
func (h *HenyeyGreenstein) G() float64 {
	return h.g
}

// evalHG returns the HG density for the cosine between wo and wi
func (h *HenyeyGreenstein) evalHG(cosTheta float64) float64 {
	temp := 1.0 + h.g*h.g + 2.0*h.g*cosTheta
	return core.InvFourPi * (1 - h.g*h.g) / (temp * math.Sqrt(temp))
}

// Sample draws a direction by inverting the HG CDF. sample1 is unused.
func (h *HenyeyGreenstein) Sample(ctx Context, mi *medium.Interaction, sample1 float64, sample2 core.Vec2) SampleResult {
	g := h.g

	var cosTheta float64
	if math.Abs(g) < hgIsotropicThreshold {
		cosTheta = 1 - 2*sample2.X
	} else {
		sqrTerm := (1 - g*g) / (1 - g + 2*g*sample2.X)
		cosTheta = (1 + g*g - sqrTerm*sqrTerm) / (2 * g)
	}

	// The local polar axis is Wi, so the direction is flipped to point
	// along the propagation direction
	phi := 2 * math.Pi * sample2.Y
	local := core.SphericalDirection(-cosTheta, phi)

	return SampleResult{
		Direction: mi.ToWorld(local),
		PDF:       h.evalHG(-cosTheta),
	}
}

// Eval returns the HG density for outgoing direction wo
func (h *HenyeyGreenstein) Eval(ctx Context, mi *medium.Interaction, wo core.Vec3) float64 {
	return h.evalHG(wo.Dot(mi.Wi))
}

// Traverse exposes g
func (h *HenyeyGreenstein) Traverse(cb core.TraversalCallback) {
	cb.PutParameter("g", &h.g, core.NonDifferentiable)
}

// ParametersChanged validates g after an update. An invalid value is
// rolled back to the last accepted one.
func (h *HenyeyGreenstein) ParametersChanged(keys []string) error {
	if len(keys) > 0 && !slices.Contains(keys, "g") {
		return nil
	}
	if err := validateG(h.g); err != nil {
		h.g = h.lastValid
		return err
	}
	h.lastValid = h.g
	return nil
}

func (h *HenyeyGreenstein) String() string {
	return fmt.Sprintf("HenyeyGreenstein[g=%g]", h.g)
}
