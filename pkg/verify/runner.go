// Package verify checks phase functions numerically: normalization over the
// sphere, agreement between sampled pdfs and Eval, and that per-component
// evaluations add up to the full mixture.
package verify

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/medium"
	"github.com/df07/go-phase-functions/pkg/phase"
)

// Options controls how many samples are drawn and how they are split
type Options struct {
	Samples   int   // Total samples per check
	BatchSize int   // Samples per worker task
	Workers   int   // Number of workers (0 = runtime.NumCPU())
	Seed      int64 // Base seed; batch i uses Seed+i
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		Samples:   200000,
		BatchSize: 10000,
		Workers:   0,
		Seed:      42,
	}
}

// Validate checks the options for consistency
func (o Options) Validate() error {
	if o.Samples <= 0 {
		return fmt.Errorf("verify: samples must be positive, got %d: %w", o.Samples, core.ErrInvalidConfig)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("verify: batch size must be positive, got %d: %w", o.BatchSize, core.ErrInvalidConfig)
	}
	if o.Workers < 0 {
		return fmt.Errorf("verify: workers must not be negative, got %d: %w", o.Workers, core.ErrInvalidConfig)
	}
	return nil
}

// Report summarizes the checks for one phase function
type Report struct {
	Phase          string      // Description of the checked phase function
	Components     int         // Number of components
	Flags          phase.Flags // Combined flags of all components
	Samples        int         // Samples drawn per check
	Integral       float64     // Estimate of the integral of Eval over the sphere
	IntegralStdErr float64     // Standard error of the integral estimate
	MaxPDFError    float64     // Largest relative Sample pdf / Eval mismatch
	MaxComponent   float64     // Largest |Σ_c Eval(c) - Eval(all)|
	InvalidSamples int         // Samples with NaN values or non-unit directions
	ZeroPDFSamples int         // Samples that produced no direction
}

// Failures lists the checks that do not hold within tolerance. The
// normalization check also allows three standard errors of Monte-Carlo noise.
func (r Report) Failures(tolerance float64) []string {
	var failures []string
	if math.Abs(r.Integral-1) > tolerance+3*r.IntegralStdErr {
		failures = append(failures, fmt.Sprintf("normalization: integral %.6f ± %.6f", r.Integral, r.IntegralStdErr))
	}
	if r.MaxPDFError > tolerance {
		failures = append(failures, fmt.Sprintf("consistency: sampled pdf differs from Eval by %.3g", r.MaxPDFError))
	}
	if r.MaxComponent > tolerance {
		failures = append(failures, fmt.Sprintf("decomposition: component sum differs from Eval by %.3g", r.MaxComponent))
	}
	if r.InvalidSamples > 0 {
		failures = append(failures, fmt.Sprintf("sampling: %d invalid samples", r.InvalidSamples))
	}
	return failures
}

// Passed reports whether every check holds within tolerance
func (r Report) Passed(tolerance float64) bool {
	return len(r.Failures(tolerance)) == 0
}

// Runner runs the checks with a worker pool
type Runner struct {
	options Options
	logger  *zap.Logger
}

// NewRunner creates a runner. A nil logger disables logging.
func NewRunner(options Options, logger *zap.Logger) (*Runner, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{options: options, logger: logger}, nil
}

// Run checks pf at the given interaction. Batches are merged in batch order,
// so the report only depends on the options and not on scheduling.
func (r *Runner) Run(pf phase.PhaseFunction, mi *medium.Interaction) (Report, error) {
	numBatches := (r.options.Samples + r.options.BatchSize - 1) / r.options.BatchSize

	pool := NewWorkerPool(pf, mi, r.options.Seed, r.options.Workers, numBatches)
	pool.Start()

	remaining := r.options.Samples
	for batchID := 0; batchID < numBatches; batchID++ {
		n := min(r.options.BatchSize, remaining)
		pool.SubmitTask(BatchTask{BatchID: batchID, Samples: n})
		remaining -= n
	}
	pool.Stop()

	batches := make([]*BatchStats, numBatches)
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		batches[result.BatchID] = &result.Stats
	}

	var total BatchStats
	for i, stats := range batches {
		if stats == nil {
			return Report{}, fmt.Errorf("verify: batch %d produced no result", i)
		}
		total.Merge(*stats)
	}

	report := Report{
		Phase:          fmt.Sprint(pf),
		Components:     pf.ComponentCount(),
		Flags:          pf.Flags(),
		Samples:        total.Integral.Count,
		Integral:       total.Integral.Mean(),
		IntegralStdErr: total.Integral.StdErr(),
		MaxPDFError:    total.MaxPDFError,
		MaxComponent:   total.MaxComponent,
		InvalidSamples: total.InvalidSamples,
		ZeroPDFSamples: total.ZeroPDFSamples,
	}

	r.logger.Debug("verified phase function",
		zap.String("phase", report.Phase),
		zap.Int("batches", numBatches),
		zap.Int("workers", pool.GetNumWorkers()),
		zap.Float64("integral", report.Integral),
		zap.Float64("integral_stderr", report.IntegralStdErr),
		zap.Float64("max_pdf_error", report.MaxPDFError),
		zap.Float64("max_component_error", report.MaxComponent))
	return report, nil
}
