// Package medium holds the scattering-event record that phase functions
// consume.
package medium

import "github.com/df07/go-phase-functions/pkg/core"

// Interaction describes a scattering event inside a participating medium.
//
// Wi points away from the scattering point, back along the incoming ray.
// Frame.N is expected to equal Wi; phase functions sample in that frame and
// evaluate against Wi, so a mismatched frame breaks sampling/eval agreement.
type Interaction struct {
	Point core.Vec3  // Position of the scattering event
	Wi    core.Vec3  // Incident direction in world space (unit length)
	Frame core.Frame // Local shading frame, Z aligned with Wi
	T     float64    // Distance along the ray, informational only
}

// NewInteraction creates an interaction at point with incident direction wi
// and a shading frame built around it
func NewInteraction(point, wi core.Vec3) Interaction {
	wi = wi.Normalize()
	return Interaction{
		Point: point,
		Wi:    wi,
		Frame: core.NewFrame(wi),
	}
}

// NewInteractionFromRay creates the interaction for a ray scattering at
// distance t. The incident direction is the reversed ray direction.
func NewInteractionFromRay(origin, direction core.Vec3, t float64) Interaction {
	point := origin.Add(direction.Multiply(t))
	mi := NewInteraction(point, direction.Negate())
	mi.T = t
	return mi
}

// ToWorld converts a direction from the interaction's local frame to world space
func (mi Interaction) ToWorld(local core.Vec3) core.Vec3 {
	return mi.Frame.ToWorld(local)
}

// ToLocal converts a world-space direction into the interaction's local frame
func (mi Interaction) ToLocal(world core.Vec3) core.Vec3 {
	return mi.Frame.ToLocal(world)
}
