package volume

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-phase-functions/pkg/core"
)

// recordingCallback collects everything a Traversable exposes
type recordingCallback struct {
	params  map[string]*float64
	flags   map[string]core.ParamFlags
	objects map[string]core.Traversable
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{
		params:  make(map[string]*float64),
		flags:   make(map[string]core.ParamFlags),
		objects: make(map[string]core.Traversable),
	}
}

func (r *recordingCallback) PutParameter(name string, value *float64, flags core.ParamFlags) {
	r.params[name] = value
	r.flags[name] = flags
}

func (r *recordingCallback) PutObject(name string, obj core.Traversable, flags core.ParamFlags) {
	r.objects[name] = obj
	r.flags[name] = flags
}

func TestConstant(t *testing.T) {
	c := NewConstant(0.25)

	for _, p := range []core.Vec3{{}, core.NewVec3(100, -3, 7)} {
		if got := c.Evaluate(p); got != 0.25 {
			t.Errorf("Evaluate(%v): expected 0.25, got %f", p, got)
		}
	}

	cb := newRecordingCallback()
	c.Traverse(cb)
	value, ok := cb.params["value"]
	if !ok {
		t.Fatal("Constant should expose \"value\"")
	}
	if cb.flags["value"] != core.Differentiable {
		t.Errorf("Expected value to be differentiable, got %v", cb.flags["value"])
	}

	*value = 0.75
	if got := c.Evaluate(core.Vec3{}); got != 0.75 {
		t.Errorf("Update through traversal not visible: got %f", got)
	}
}

func TestGradient(t *testing.T) {
	g, err := NewGradient(1, 0, 10, 0.2, 1.0)
	if err != nil {
		t.Fatalf("NewGradient failed: %v", err)
	}

	tests := []struct {
		name     string
		point    core.Vec3
		expected float64
	}{
		{"Below start", core.NewVec3(0, -5, 0), 0.2},
		{"At start", core.NewVec3(3, 0, 3), 0.2},
		{"Midpoint", core.NewVec3(0, 5, 0), 0.6},
		{"At end", core.NewVec3(0, 10, 0), 1.0},
		{"Beyond end", core.NewVec3(0, 50, 0), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Evaluate(tt.point); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestNewGradient_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		axis       int
		start, end float64
	}{
		{"Negative axis", -1, 0, 1},
		{"Axis too large", 3, 0, 1},
		{"Empty range", 0, 1, 1},
		{"Reversed range", 0, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGradient(tt.axis, tt.start, tt.end, 0, 1)
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
