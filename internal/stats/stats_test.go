package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileLinearInterpolation(t *testing.T) {
	x := []float64{4, 1, 3, 2}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 1.75},
		{50, 2.5},
		{75, 3.25},
		{100, 4},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(x, tt.p), 1e-12, "p=%v", tt.p)
	}
	assert.Equal(t, []float64{4, 1, 3, 2}, x, "input must not be sorted in place")
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestIQR(t *testing.T) {
	assert.InDelta(t, 1.5, IQR([]float64{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 0.0, IQR([]float64{7, 7, 7}))
}

func TestSummarizeSkipsNaN(t *testing.T) {
	s := Summarize([]float64{5, math.NaN(), 1, 3})
	assert.Equal(t, Summary{Count: 3, Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5, Mean: 3}, s)
	assert.Equal(t, Summary{}, Summarize([]float64{math.NaN()}))
}

func TestOneWayANOVA(t *testing.T) {
	res, ok := OneWayANOVA([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.True(t, ok)
	assert.InDelta(t, 13.5, res.F, 1e-9)
	assert.Equal(t, 1, res.DFBetween)
	assert.Equal(t, 4, res.DFWithin)
	assert.InDelta(t, 0.0213, res.PValue, 0.002)
}

func TestOneWayANOVADegenerate(t *testing.T) {
	_, ok := OneWayANOVA([][]float64{{1, 2, 3}})
	assert.False(t, ok, "single group")

	_, ok = OneWayANOVA([][]float64{{1}, {2}})
	assert.False(t, ok, "no within-group degrees of freedom")

	res, ok := OneWayANOVA([][]float64{{70, 70, 70}, {70, 70, 70}})
	require.True(t, ok)
	assert.True(t, math.IsNaN(res.PValue), "zero variance is not significant")

	res, ok = OneWayANOVA([][]float64{{60, 60, 60}, {80, 80, 80}})
	require.True(t, ok)
	assert.True(t, math.IsInf(res.F, 1))
	assert.Equal(t, 0.0, res.PValue)
}
