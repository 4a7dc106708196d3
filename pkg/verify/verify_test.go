package verify

import (
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
	"github.com/df07/go-phase-functions/pkg/phase"
	"github.com/df07/go-phase-functions/pkg/volume"
)

const testTolerance = 0.01

// scaledEval reports Eval values scaled by a constant factor
type scaledEval struct {
	phase.PhaseFunction
	factor float64
}

func (s scaledEval) Eval(ctx phase.Context, mi *medium.Interaction, wo core.Vec3) float64 {
	return s.factor * s.PhaseFunction.Eval(ctx, mi, wo)
}

// scaledPDF reports sample pdfs scaled by a constant factor
type scaledPDF struct {
	phase.PhaseFunction
	factor float64
}

func (s scaledPDF) Sample(ctx phase.Context, mi *medium.Interaction, sample1 float64, sample2 core.Vec2) phase.SampleResult {
	result := s.PhaseFunction.Sample(ctx, mi, sample1, sample2)
	result.PDF *= s.factor
	return result
}

// unweightedComponents forgets the lobe weight when a component is selected
type unweightedComponents struct {
	phase.PhaseFunction
}

func (u unweightedComponents) Eval(ctx phase.Context, mi *medium.Interaction, wo core.Vec3) float64 {
	value := u.PhaseFunction.Eval(ctx, mi, wo)
	if ctx.IsComponentSelected() {
		return 2 * value
	}
	return value
}

// nanSampler returns NaN directions
type nanSampler struct {
	phase.PhaseFunction
}

func (n nanSampler) Sample(ctx phase.Context, mi *medium.Interaction, sample1 float64, sample2 core.Vec2) phase.SampleResult {
	return phase.SampleResult{Direction: core.NewVec3(math.NaN(), 0, 0), PDF: 1}
}

func testOptions() Options {
	return Options{Samples: 50000, BatchSize: 5000, Workers: 4, Seed: 7}
}

func testInteraction() *medium.Interaction {
	mi := medium.NewInteraction(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(1, 2, -2))
	return &mi
}

func mustRunner(t *testing.T, options Options) *Runner {
	t.Helper()
	runner, err := NewRunner(options, nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	return runner
}

func mustRun(t *testing.T, runner *Runner, pf phase.PhaseFunction) Report {
	t.Helper()
	report, err := runner.Run(pf, testInteraction())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return report
}

func testBlend(t *testing.T, weight float64) *phase.Blend {
	t.Helper()
	forward, err := phase.NewHenyeyGreenstein(0.5)
	if err != nil {
		t.Fatal(err)
	}
	backward, err := phase.NewHenyeyGreenstein(-0.3)
	if err != nil {
		t.Fatal(err)
	}
	blend, err := phase.NewBlend(volume.NewConstant(weight), forward, backward)
	if err != nil {
		t.Fatal(err)
	}
	return blend
}

func TestEstimator(t *testing.T) {
	var e Estimator
	if e.Mean() != 0 || e.StdErr() != 0 {
		t.Errorf("Empty estimator should report zeros, got mean=%g stderr=%g", e.Mean(), e.StdErr())
	}

	for _, v := range []float64{1, 2, 3, 4} {
		e.AddSample(v)
	}
	if e.Mean() != 2.5 {
		t.Errorf("Expected mean 2.5, got %g", e.Mean())
	}
	// Sample variance 5/3 over 4 samples
	expected := math.Sqrt(5.0 / 3.0 / 4.0)
	if math.Abs(e.StdErr()-expected) > 1e-12 {
		t.Errorf("Expected stderr %g, got %g", expected, e.StdErr())
	}

	var other Estimator
	other.AddSample(5)
	e.Merge(other)
	if e.Count != 5 || e.Mean() != 3 {
		t.Errorf("Merge: expected count 5 and mean 3, got %d and %g", e.Count, e.Mean())
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"zero samples", func(o *Options) { o.Samples = 0 }, true},
		{"zero batch size", func(o *Options) { o.BatchSize = 0 }, true},
		{"negative workers", func(o *Options) { o.Workers = -1 }, true},
		{"auto workers", func(o *Options) { o.Workers = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := DefaultOptions()
			tt.modify(&options)
			_, err := NewRunner(options, nil)
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRunner_ValidPhaseFunctions(t *testing.T) {
	runner := mustRunner(t, testOptions())

	tests := []struct {
		name string
		pf   phase.PhaseFunction
	}{
		{"Isotropic", phase.NewIsotropic()},
		{"Rayleigh", phase.NewRayleigh()},
		{"HG", testBlend(t, 0).Phase(0)},
		{"Blend", testBlend(t, 0.3)},
		{"Blend at weight 1", testBlend(t, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := mustRun(t, runner, tt.pf)
			if !report.Passed(testTolerance) {
				t.Errorf("Expected checks to pass, failures: %v (report %+v)", report.Failures(testTolerance), report)
			}
			if report.MaxPDFError > 1e-9 {
				t.Errorf("Sampled pdfs should match Eval to rounding, got %g", report.MaxPDFError)
			}
		})
	}
}

func TestRunner_DetectsFailures(t *testing.T) {
	runner := mustRunner(t, testOptions())

	tests := []struct {
		name     string
		pf       phase.PhaseFunction
		expected []string
	}{
		{"Unnormalized", scaledEval{testBlend(t, 0.3), 2}, []string{"normalization", "consistency"}},
		{"Wrong pdf", scaledPDF{phase.NewRayleigh(), 1.5}, []string{"consistency"}},
		{"Wrong components", unweightedComponents{testBlend(t, 0.3)}, []string{"decomposition"}},
		{"NaN samples", nanSampler{phase.NewIsotropic()}, []string{"sampling"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := mustRun(t, runner, tt.pf)
			failures := report.Failures(testTolerance)
			if len(failures) != len(tt.expected) {
				t.Fatalf("Expected %d failures, got %v", len(tt.expected), failures)
			}
			for i, prefix := range tt.expected {
				if !strings.HasPrefix(failures[i], prefix) {
					t.Errorf("Failure %d: expected %q, got %q", i, prefix, failures[i])
				}
			}
			if report.Passed(testTolerance) {
				t.Error("Passed should be false")
			}
		})
	}
}

func TestRunner_Deterministic(t *testing.T) {
	blend := testBlend(t, 0.4)

	options := testOptions()
	options.Workers = 1
	serial := mustRun(t, mustRunner(t, options), blend)

	options.Workers = 8
	parallel := mustRun(t, mustRunner(t, options), blend)

	if serial != parallel {
		t.Errorf("Reports differ between worker counts:\n%+v\n%+v", serial, parallel)
	}

	options.Seed++
	reseeded := mustRun(t, mustRunner(t, options), blend)
	if reseeded.Integral == serial.Integral {
		t.Error("A different seed should give a different estimate")
	}
}

func TestRunner_PartialBatch(t *testing.T) {
	runner := mustRunner(t, Options{Samples: 25, BatchSize: 10, Workers: 2, Seed: 1})
	report := mustRun(t, runner, phase.NewIsotropic())

	if report.Samples != 25 {
		t.Errorf("Expected 25 samples, got %d", report.Samples)
	}
	if report.Integral != 1 || report.IntegralStdErr != 0 {
		t.Errorf("Isotropic integral should be exactly 1, got %g ± %g", report.Integral, report.IntegralStdErr)
	}
	if report.Components != 1 {
		t.Errorf("Expected 1 component, got %d", report.Components)
	}
}

func TestRunner_Logging(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	runner, err := NewRunner(testOptions(), zap.New(observed))
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	mustRun(t, runner, phase.NewIsotropic())

	entries := logs.FilterMessage("verified phase function").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["phase"] != "Isotropic[]" || fields["batches"] != int64(10) {
		t.Errorf("Unexpected fields: %v", fields)
	}
}
