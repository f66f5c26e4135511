// Package sample draws random row positions for column sampling.
//
// Exactly one of N and Frac sizes the draw; with neither a single row is
// drawn. Weights, when given, are renormalized to sum to one and used as a
// categorical distribution over rows.
//
//	positions, err := sample.Draw(col.Len(), sample.N(3), sample.Seed(42))
package sample

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// Options configures a draw
type Options struct {
	n       *int
	frac    *float64
	replace bool
	weights []float64
	src     rand.Source
}

// Option configures a draw
type Option func(*Options)

// N draws n rows
func N(n int) Option {
	return func(o *Options) { o.n = &n }
}

// Frac draws round(frac*length) rows
func Frac(frac float64) Option {
	return func(o *Options) { o.frac = &frac }
}

// Replace allows a row to be drawn more than once
func Replace() Option {
	return func(o *Options) { o.replace = true }
}

// Weights draws rows with probability proportional to w
func Weights(w []float64) Option {
	return func(o *Options) { o.weights = w }
}

// Seed makes the draw reproducible
func Seed(seed uint64) Option {
	return func(o *Options) { o.src = rand.NewPCG(seed, seed) }
}

// Source draws from src
func Source(src rand.Source) Option {
	return func(o *Options) { o.src = src }
}

// Draw returns positions in [0, length) selected according to opts
func Draw(length int, opts ...Option) ([]int, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	n, err := o.size(length)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []int{}, nil
	}
	if !o.replace && n > length {
		return nil, errors.Newf(errors.ErrorTypeInvalidSample, "cannot draw %d rows from %d without replacement", n, length).
			WithDetail("n", n).
			WithDetail("length", length)
	}

	if o.weights == nil {
		return uniform(length, n, o.replace, o.src), nil
	}
	p, err := normalize(o.weights, length)
	if err != nil {
		return nil, err
	}
	return weighted(p, n, o.replace, o.src)
}

func (o *Options) size(length int) (int, error) {
	switch {
	case o.n != nil && o.frac != nil:
		return 0, errors.New(errors.ErrorTypeAmbiguousSampleSize, "only one of n and frac may be given")
	case o.frac != nil:
		if *o.frac < 0 || math.IsNaN(*o.frac) {
			return 0, errors.Newf(errors.ErrorTypeInvalidSample, "frac must be non-negative, got %v", *o.frac)
		}
		return int(math.Round(*o.frac * float64(length))), nil
	case o.n != nil:
		if *o.n < 0 {
			return 0, errors.Newf(errors.ErrorTypeInvalidSample, "n must be non-negative, got %d", *o.n)
		}
		return *o.n, nil
	default:
		return 1, nil
	}
}

func normalize(w []float64, length int) ([]float64, error) {
	if len(w) != length {
		return nil, errors.Newf(errors.ErrorTypeLengthMismatch, "got %d weights for %d rows", len(w), length).
			WithDetail("weights", len(w)).
			WithDetail("length", length)
	}
	for i, x := range w {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.Newf(errors.ErrorTypeInvalidSample, "weight %d is %v", i, x)
		}
	}
	sum := floats.Sum(w)
	if sum == 0 {
		return nil, errors.New(errors.ErrorTypeInvalidSample, "weights sum to zero")
	}
	p := make([]float64, len(w))
	copy(p, w)
	floats.Scale(1/sum, p)
	return p, nil
}

func uniform(length, n int, replace bool, src rand.Source) []int {
	out := make([]int, n)
	if replace {
		rng := rand.New(src)
		for i := range out {
			out[i] = rng.IntN(length)
		}
		return out
	}
	sampleuv.WithoutReplacement(out, length, src)
	return out
}

func weighted(p []float64, n int, replace bool, src rand.Source) ([]int, error) {
	out := make([]int, n)
	if replace {
		cat := distuv.NewCategorical(p, src)
		for i := range out {
			out[i] = int(cat.Rand())
		}
		return out, nil
	}

	w := sampleuv.NewWeighted(p, src)
	for i := range out {
		idx, ok := w.Take()
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeInvalidSample, "only %d rows have non-zero weight, cannot draw %d", i, n).
				WithDetail("n", n)
		}
		out[i] = idx
	}
	return out, nil
}
