package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for Monte-Carlo estimators
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// FixedSampler replays a fixed sequence of values, wrapping around at the end
type FixedSampler struct {
	values []float64
	next   int
}

// NewFixedSampler creates a sampler that returns the given values in order
func NewFixedSampler(values ...float64) *FixedSampler {
	return &FixedSampler{values: values}
}

// Get1D returns the next value of the sequence
func (f *FixedSampler) Get1D() float64 {
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}

// Get2D returns the next two values of the sequence
func (f *FixedSampler) Get2D() Vec2 {
	return NewVec2(f.Get1D(), f.Get1D())
}

const (
	// InvFourPi is the density of the uniform distribution on the unit sphere
	InvFourPi = 1.0 / (4.0 * math.Pi)

	// OneMinusEpsilon is the largest float64 below 1
	OneMinusEpsilon = 0x1.fffffffffffffp-1
)

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := SafeSqrt(1.0 - z*z)
	phi := 2.0 * math.Pi * sample.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	return NewVec3(x, y, z)
}

// SphericalDirection builds a local direction from a polar cosine and azimuth
func SphericalDirection(cosTheta, phi float64) Vec3 {
	sinTheta := SafeSqrt(1.0 - cosTheta*cosTheta)
	sinPhi, cosPhi := math.Sincos(phi)
	return NewVec3(sinTheta*cosPhi, sinTheta*sinPhi, cosTheta)
}

// SafeSqrt returns the square root of x, flooring negative round-off to zero
func SafeSqrt(x float64) float64 {
	return math.Sqrt(math.Max(0, x))
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
