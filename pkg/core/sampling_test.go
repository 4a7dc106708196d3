package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleOnUnitSphere(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	const numSamples = 20000

	var mean Vec3
	for i := 0; i < numSamples; i++ {
		dir := SampleOnUnitSphere(NewVec2(random.Float64(), random.Float64()))
		if math.Abs(dir.Length()-1.0) > 1e-9 {
			t.Fatalf("Sample %d not on unit sphere: %v (length %f)", i, dir, dir.Length())
		}
		mean = mean.Add(dir)
	}
	mean = mean.Multiply(1.0 / numSamples)

	// A uniform distribution has zero mean; 3 sigma bound for each axis is ~0.012
	if mean.Length() > 0.02 {
		t.Errorf("Sphere samples not centered: mean %v", mean)
	}
}

func TestSphericalDirection(t *testing.T) {
	tests := []struct {
		name     string
		cosTheta float64
		phi      float64
		expected Vec3
	}{
		{"North pole", 1, 0, NewVec3(0, 0, 1)},
		{"South pole", -1, 0, NewVec3(0, 0, -1)},
		{"Equator at phi=0", 0, 0, NewVec3(1, 0, 0)},
		{"Equator at phi=pi/2", 0, math.Pi / 2, NewVec3(0, 1, 0)},
		{"Cosine slightly above one", 1 + 1e-15, 0, NewVec3(0, 0, 1 + 1e-15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SphericalDirection(tt.cosTheta, tt.phi)
			if got.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if math.IsNaN(got.X) || math.IsNaN(got.Y) {
				t.Errorf("Got NaN component: %v", got)
			}
		})
	}
}

func TestSafeSqrtAndClamp(t *testing.T) {
	if got := SafeSqrt(-1e-17); got != 0 {
		t.Errorf("SafeSqrt of negative round-off: expected 0, got %g", got)
	}
	if got := SafeSqrt(4); got != 2 {
		t.Errorf("SafeSqrt(4): expected 2, got %g", got)
	}
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp above range: expected 1, got %g", got)
	}
	if got := Clamp(-0.5, 0, 1); got != 0 {
		t.Errorf("Clamp below range: expected 0, got %g", got)
	}
}

func TestFixedSampler(t *testing.T) {
	s := NewFixedSampler(0.1, 0.2, 0.3)

	if got := s.Get1D(); got != 0.1 {
		t.Errorf("Expected 0.1, got %f", got)
	}
	if got := s.Get2D(); got != NewVec2(0.2, 0.3) {
		t.Errorf("Expected (0.2, 0.3), got %v", got)
	}
	if got := s.Get1D(); got != 0.1 {
		t.Errorf("Expected sequence to wrap around to 0.1, got %f", got)
	}
}
