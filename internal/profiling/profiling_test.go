package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSample(t *testing.T) {
	da := NewDistributionAnalyzer()
	p, err := da.AnalyzeSample("S1", []float64{0, 0, 0, 10, math.NaN()})
	require.NoError(t, err)

	assert.Equal(t, "S1", p.Sample)
	assert.InDelta(t, 2.5, p.Mean, 1e-12)
	assert.Equal(t, 0.0, p.Min)
	assert.Equal(t, 10.0, p.Max)
	assert.Equal(t, 0.0, p.Median)
	assert.InDelta(t, 0.75, p.ZeroFraction, 1e-12)
	assert.InDelta(t, 0.75, p.Gini, 1e-12)

	_, err = da.AnalyzeSample("empty", nil)
	assert.Error(t, err)
}

func TestGiniIndex(t *testing.T) {
	assert.InDelta(t, 0, giniIndex([]float64{4, 4, 4, 4}), 1e-12)
	assert.Equal(t, 0.0, giniIndex([]float64{0, 0}))
	assert.Equal(t, 0.0, giniIndex(nil))
}

func TestRank_AveragesTies(t *testing.T) {
	assert.Equal(t, []float64{2.5, 1, 2.5, 4}, Rank([]float64{5, 1, 5, 9}))
}

func TestSpearman(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 1.0, Spearman(x, []float64{1, 4, 9, 16, 25}), 1e-12)
	assert.InDelta(t, -1.0, Spearman(x, []float64{5, 4, 3, 2, 1}), 1e-12)
	assert.InDelta(t, 1.0, Spearman([]float64{1, math.NaN(), 3}, []float64{2, 7, 4}), 1e-12)
	assert.True(t, math.IsNaN(Spearman([]float64{1}, []float64{1})))
}

func TestSpearmanMatrix(t *testing.T) {
	cols := map[string][]float64{
		"A": {1, 2, 3, 4},
		"B": {10, 20, 30, 40},
		"C": {4, 3, 2, 1},
	}
	m := SpearmanMatrix([]string{"A", "B", "C"}, cols)
	require.Len(t, m.Values, 3)
	assert.InDelta(t, 1.0, m.Values[0][0], 1e-12)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12)
	assert.InDelta(t, -1.0, m.Values[2][0], 1e-12)
	assert.Equal(t, m.Values[1][2], m.Values[2][1])
}

func TestGaussianKDE(t *testing.T) {
	data := []float64{0, 1, 1, 2, 2, 2, 3, 3, 4}
	d, err := GaussianKDE("S1", data, 0.5, 200)
	require.NoError(t, err)
	require.Len(t, d.X, 200)
	require.Len(t, d.Y, 200)
	assert.Equal(t, 0.0, d.X[0])
	assert.Equal(t, 4.0, d.X[199])

	// trapezoid integral over the data range stays close to, and below, one
	var area float64
	for i := 1; i < len(d.X); i++ {
		area += (d.X[i] - d.X[i-1]) * (d.Y[i] + d.Y[i-1]) / 2
	}
	assert.InDelta(t, 0.9, area, 0.1)

	_, err = GaussianKDE("flat", []float64{3, 3, 3}, DefaultBandwidth, DefaultGridPoints)
	assert.Error(t, err)
	_, err = GaussianKDE("one", []float64{3}, DefaultBandwidth, DefaultGridPoints)
	assert.Error(t, err)
}
