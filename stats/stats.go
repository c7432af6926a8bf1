// Package stats keeps running statistics over episode returns.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Running tracks count, mean and variance of a stream using Welford's
// algorithm. Two Runnings can be merged, so each worker can keep its own.
type Running struct {
	n    int
	last float64
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (r *Running) Push(val float64) {
	r.last = val
	r.n++
	if r.n == 1 {
		r.mean, r.m2 = val, 0
		r.min, r.max = val, val
		return
	}
	delta := val - r.mean
	r.mean += delta / float64(r.n)
	r.m2 += delta * (val - r.mean)
	r.min = min(r.min, val)
	r.max = max(r.max, val)
}

// Merge folds o into r (Chan et al. pairwise update).
func (r *Running) Merge(o Running) {
	if o.n == 0 {
		return
	}
	if r.n == 0 {
		*r = o
		return
	}
	n := r.n + o.n
	delta := o.mean - r.mean
	r.mean += delta * float64(o.n) / float64(n)
	r.m2 += o.m2 + delta*delta*float64(r.n)*float64(o.n)/float64(n)
	r.min = min(r.min, o.min)
	r.max = max(r.max, o.max)
	r.last = o.last
	r.n = n
}

func (r *Running) Mean() float64 {
	if r.n > 0 {
		return r.mean
	}
	return 0.0
}

func (r *Running) Variance() float64 {
	if r.n <= 1 {
		return 0.0
	}
	return r.m2 / float64(r.n-1)
}

func (r *Running) Stdev() float64 {
	return math.Sqrt(r.Variance())
}

func (r *Running) Last() float64 { return r.last }

func (r *Running) Min() float64 { return r.min }

func (r *Running) Max() float64 { return r.max }

// StandardError returns the standard error of the mean.
func (r *Running) StandardError() float64 {
	if r.n == 0 {
		return 0
	}
	return math.Sqrt(r.Variance() / float64(r.n))
}

func (r *Running) N() int {
	return r.n
}

// Summary describes a batch of values.
type Summary struct {
	N      int
	Mean   float64
	Stdev  float64
	Median float64
	Min    float64
	Max    float64
}

// Summarize computes a Summary of xs. xs is not modified.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = 0
	}
	return Summary{
		N:      len(sorted),
		Mean:   mean,
		Stdev:  std,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}
