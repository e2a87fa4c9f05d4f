// Package shapley computes exact interventional Shapley values for models
// with a small number of features.
//
// The value of a coalition S for a row x is the mean model output over a
// background set where features in S are taken from x and the rest from
// the background row. Every coalition is enumerated, so the attributions
// satisfy efficiency exactly: they sum to f(x) minus the mean background
// prediction.
package shapley

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"
	"sort"
)

// MaxFeatures bounds the coalition enumeration (2^MaxFeatures coalitions
// per row).
const MaxFeatures = 16

// DefaultMaxBackground is the background size above which rows are
// subsampled.
const DefaultMaxBackground = 100

var (
	ErrEmptyBackground = errors.New("background set is empty")
	ErrTooManyFeatures = errors.New("too many features for exact enumeration")
	ErrShapeMismatch   = errors.New("row width does not match the background")
)

// Model maps one feature row to a prediction.
type Model interface {
	Predict(x []float64) float64
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(x []float64) float64

func (f ModelFunc) Predict(x []float64) float64 { return f(x) }

// Option configures an Explainer.
type Option func(*Explainer)

// WithMaxBackground overrides DefaultMaxBackground. n <= 0 disables
// subsampling.
func WithMaxBackground(n int) Option {
	return func(e *Explainer) { e.maxBackground = n }
}

// WithSeed sets the seed used to subsample the background.
func WithSeed(seed uint64) Option {
	return func(e *Explainer) { e.seed = seed }
}

// Explainer holds a model and its background set. It is safe for
// concurrent use once built.
type Explainer struct {
	model         Model
	background    [][]float64
	features      int
	weights       []float64
	maxBackground int
	seed          uint64
	base          float64
}

// NewExplainer validates the background and precomputes coalition weights.
// The background is copied; a background larger than the configured
// maximum is subsampled deterministically.
func NewExplainer(m Model, background [][]float64, opts ...Option) (*Explainer, error) {
	if len(background) == 0 {
		return nil, ErrEmptyBackground
	}
	e := &Explainer{
		model:         m,
		features:      len(background[0]),
		maxBackground: DefaultMaxBackground,
		seed:          1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.features > MaxFeatures {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFeatures, e.features, MaxFeatures)
	}
	for i, row := range background {
		if len(row) != e.features {
			return nil, fmt.Errorf("%w: background row %d has %d values, want %d", ErrShapeMismatch, i, len(row), e.features)
		}
	}

	e.background = e.sample(background)
	e.weights = coalitionWeights(e.features)

	var sum float64
	for _, b := range e.background {
		sum += m.Predict(b)
	}
	e.base = sum / float64(len(e.background))
	return e, nil
}

func (e *Explainer) sample(background [][]float64) [][]float64 {
	idx := make([]int, len(background))
	for i := range idx {
		idx[i] = i
	}
	if e.maxBackground > 0 && len(background) > e.maxBackground {
		rng := rand.New(rand.NewPCG(e.seed, e.seed))
		idx = rng.Perm(len(background))[:e.maxBackground]
		sort.Ints(idx)
	}
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = append([]float64(nil), background[j]...)
	}
	return out
}

// coalitionWeights returns w[s] = s!(M-s-1)!/M! for coalition sizes
// s = 0..M-1.
func coalitionWeights(m int) []float64 {
	if m == 0 {
		return nil
	}
	w := make([]float64, m)
	// w[0] = 1/M, w[s] = w[s-1] * s/(M-s)
	w[0] = 1 / float64(m)
	for s := 1; s < m; s++ {
		w[s] = w[s-1] * float64(s) / float64(m-s)
	}
	return w
}

// BaseValue is the mean prediction over the background.
func (e *Explainer) BaseValue() float64 { return e.base }

// Background returns the (possibly subsampled) background size.
func (e *Explainer) Background() int { return len(e.background) }

// Explain returns one attribution per feature for row x.
func (e *Explainer) Explain(x []float64) ([]float64, error) {
	if len(x) != e.features {
		return nil, fmt.Errorf("%w: row has %d values, want %d", ErrShapeMismatch, len(x), e.features)
	}
	m := e.features
	if m == 0 {
		return nil, nil
	}

	coalitions := 1 << m
	values := make([]float64, coalitions)
	z := make([]float64, m)
	for mask := 0; mask < coalitions; mask++ {
		var sum float64
		for _, b := range e.background {
			for j := 0; j < m; j++ {
				if mask&(1<<j) != 0 {
					z[j] = x[j]
				} else {
					z[j] = b[j]
				}
			}
			sum += e.model.Predict(z)
		}
		values[mask] = sum / float64(len(e.background))
	}

	phi := make([]float64, m)
	for mask := 0; mask < coalitions; mask++ {
		size := bits.OnesCount(uint(mask))
		if size == m {
			continue
		}
		for i := 0; i < m; i++ {
			bit := 1 << i
			if mask&bit != 0 {
				continue
			}
			phi[i] += e.weights[size] * (values[mask|bit] - values[mask])
		}
	}
	return phi, nil
}

// ExplainAll explains every row of xs.
func (e *Explainer) ExplainAll(xs [][]float64) ([][]float64, error) {
	out := make([][]float64, len(xs))
	for i, x := range xs {
		phi, err := e.Explain(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = phi
	}
	return out, nil
}

// MeanAttribution averages the signed attributions of every row of xs per
// feature.
func (e *Explainer) MeanAttribution(xs [][]float64) ([]float64, error) {
	mean := make([]float64, e.features)
	if len(xs) == 0 {
		return mean, nil
	}
	for i, x := range xs {
		phi, err := e.Explain(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		for j, v := range phi {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(xs))
	}
	return mean, nil
}
