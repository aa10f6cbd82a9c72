package figure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBounds_SkipsNonFinite(t *testing.T) {
	lo, hi, ok := Bounds([]float64{math.NaN(), 2, math.Inf(1)}, []float64{-3})
	assert.True(t, ok)
	assert.Equal(t, -3.0, lo)
	assert.Equal(t, 2.0, hi)

	_, _, ok = Bounds([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestSymmetricRange(t *testing.T) {
	r := SymmetricRange([]float64{-2, 1, math.Inf(-1)}, 1.1)
	assert.InDelta(t, -2.2, r.Min, 1e-12)
	assert.InDelta(t, 2.2, r.Max, 1e-12)
	assert.Equal(t, Range{Min: -1, Max: 1}, SymmetricRange(nil, 1.1))
}

func TestUpperRange(t *testing.T) {
	r := UpperRange([]float64{0.5, 3, math.Inf(1)}, 1.1)
	assert.Equal(t, 0.5, r.Min)
	assert.InDelta(t, 3.3, r.Max, 1e-12)

	r = UpperRange([]float64{-1, 2}, 1.1)
	assert.Equal(t, 0.0, r.Min)
}

func TestHyperbola(t *testing.T) {
	l := Hyperbola("low", "#000000", -2, -4, -1, 4)
	assert.Equal(t, []float64{-4, -3, -2, -1}, l.X)
	assert.InDelta(t, 0.5, l.Y[0], 1e-12)
	assert.InDelta(t, 2.0, l.Y[3], 1e-12)
	assert.True(t, l.Dashed)
}

func TestSeriesSizeAt(t *testing.T) {
	s := Series{Size: 5, Sizes: []float64{10}, X: []float64{0, 1}}
	assert.Equal(t, 10.0, s.SizeAt(0))
	assert.Equal(t, 5.0, s.SizeAt(1))
	assert.Equal(t, 2, Figure{Series: []Series{s, s}}.Points())
}
