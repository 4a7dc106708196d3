package verify

import "math"

// Estimator accumulates a Monte-Carlo estimate
type Estimator struct {
	Sum   float64 // Sum of the samples
	SumSq float64 // Sum of squared samples for variance
	Count int     // Number of samples taken
}

// AddSample adds one sample to the estimate
func (e *Estimator) AddSample(value float64) {
	e.Sum += value
	e.SumSq += value * value
	e.Count++
}

// Merge folds another estimator into this one
func (e *Estimator) Merge(other Estimator) {
	e.Sum += other.Sum
	e.SumSq += other.SumSq
	e.Count += other.Count
}

// Mean returns the current estimate
func (e *Estimator) Mean() float64 {
	if e.Count == 0 {
		return 0
	}
	return e.Sum / float64(e.Count)
}

// StdErr returns the standard error of the mean
func (e *Estimator) StdErr() float64 {
	if e.Count < 2 {
		return 0
	}
	n := float64(e.Count)
	mean := e.Sum / n
	variance := (e.SumSq - n*mean*mean) / (n - 1)
	return math.Sqrt(math.Max(variance, 0) / n)
}

// BatchStats holds the check results for one batch of samples
type BatchStats struct {
	Integral       Estimator // Eval·4π over uniform sphere directions
	MaxPDFError    float64   // Largest relative Sample pdf / Eval mismatch
	MaxComponent   float64   // Largest |Σ_c Eval(c) - Eval(all)|
	InvalidSamples int       // Samples with NaN values or non-unit directions
	ZeroPDFSamples int       // Samples that reported no valid direction
}

// Merge folds another batch into this one
func (s *BatchStats) Merge(other BatchStats) {
	s.Integral.Merge(other.Integral)
	s.MaxPDFError = math.Max(s.MaxPDFError, other.MaxPDFError)
	s.MaxComponent = math.Max(s.MaxComponent, other.MaxComponent)
	s.InvalidSamples += other.InvalidSamples
	s.ZeroPDFSamples += other.ZeroPDFSamples
}

// relativeError returns |a-b| relative to the larger magnitude
func relativeError(a, b float64) float64 {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return 0
	}
	return math.Abs(a-b) / scale
}
