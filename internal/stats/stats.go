// Package stats holds the small numeric helpers shared by the analysis
// engines. Heavier linear algebra lives with the engines that need it.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// Percentile returns the p-th percentile (0 <= p <= 100) using linear
// interpolation between closest ranks, the same convention as numpy's
// default. The input is not modified.
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= n {
		return cp[lower]
	}
	weight := rank - float64(lower)
	return cp[lower]*(1-weight) + cp[upper]*weight
}

// IQR returns the interquartile range (75th minus 25th percentile).
func IQR(x []float64) float64 {
	return Percentile(x, 75) - Percentile(x, 25)
}

// Summary is a five-number summary plus count and mean, enough for a
// renderer to draw a box plot.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Summarize computes a Summary, skipping NaN values.
func Summarize(x []float64) Summary {
	clean := DropNaN(x)
	if len(clean) == 0 {
		return Summary{}
	}
	return Summary{
		Count:  len(clean),
		Min:    Percentile(clean, 0),
		Q1:     Percentile(clean, 25),
		Median: Percentile(clean, 50),
		Q3:     Percentile(clean, 75),
		Max:    Percentile(clean, 100),
		Mean:   Mean(clean),
	}
}

// DropNaN returns the non-NaN values of x.
func DropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// ANOVA is the outcome of a one-way analysis of variance.
type ANOVA struct {
	F         float64
	PValue    float64
	DFBetween int
	DFWithin  int
}

// OneWayANOVA tests whether the group means differ. It needs at least two
// groups and more observations than groups; otherwise ok is false.
//
// When every observation is identical the statistic is undefined and PValue
// is NaN. When groups are internally constant but differ from each other
// F is +Inf and PValue is 0.
func OneWayANOVA(groups [][]float64) (res ANOVA, ok bool) {
	k := len(groups)
	if k < 2 {
		return ANOVA{}, false
	}

	var n int
	var grand float64
	for _, g := range groups {
		if len(g) == 0 {
			return ANOVA{}, false
		}
		n += len(g)
		for _, v := range g {
			grand += v
		}
	}
	if n <= k {
		return ANOVA{}, false
	}
	grand /= float64(n)

	var ssb, ssw float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssw += (v - m) * (v - m)
		}
	}

	// Sums of squares below tol are rounding noise from the group means.
	tol := 1e-12 * float64(n) * math.Max(1, grand*grand)

	res = ANOVA{DFBetween: k - 1, DFWithin: n - k}
	switch {
	case ssw <= tol && ssb <= tol:
		res.F, res.PValue = math.NaN(), math.NaN()
	case ssw <= tol:
		res.F, res.PValue = math.Inf(1), 0
	default:
		res.F = (ssb / float64(res.DFBetween)) / (ssw / float64(res.DFWithin))
		dist := distuv.F{D1: float64(res.DFBetween), D2: float64(res.DFWithin)}
		res.PValue = dist.Survival(res.F)
	}
	return res, true
}
