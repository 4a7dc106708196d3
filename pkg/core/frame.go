package core

import "math"

// Frame is an orthonormal basis used to move directions between a local
// shading space (Z = N) and world space
type Frame struct {
	S, T, N Vec3
}

// IdentityFrame returns the frame whose axes are the world axes
func IdentityFrame() Frame {
	return Frame{S: NewVec3(1, 0, 0), T: NewVec3(0, 1, 0), N: NewVec3(0, 0, 1)}
}

// NewFrame builds a frame around the unit vector n.
// Uses the branchless construction of Duff et al. 2017, which maps
// n = (0, 0, 1) to the identity frame.
func NewFrame(n Vec3) Frame {
	sign := math.Copysign(1.0, n.Z)
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a
	s := NewVec3(1+sign*n.X*n.X*a, sign*b, -sign*n.X)
	t := NewVec3(b, sign+n.Y*n.Y*a, -n.Y)
	return Frame{S: s, T: t, N: n}
}

// ToWorld converts a local direction into world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}

// ToLocal converts a world direction into the frame's local space
func (f Frame) ToLocal(v Vec3) Vec3 {
	return NewVec3(v.Dot(f.S), v.Dot(f.T), v.Dot(f.N))
}

// CosTheta returns the cosine between a local direction and the frame normal
func CosTheta(v Vec3) float64 {
	return v.Z
}
