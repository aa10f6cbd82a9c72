package figure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteAt(t *testing.T) {
	p := Palette{"#000000", "#ffffff"}
	assert.Equal(t, "#000000", p.At(0))
	assert.Equal(t, "#ffffff", p.At(1))
	assert.Equal(t, "#808080", p.At(0.5))
	assert.Equal(t, "#000000", p.At(-3))
	assert.Equal(t, "#000000", p.At(math.NaN()))
	assert.Equal(t, "#ffffff", p.Scale(10, 0, 1))
	assert.Equal(t, "#ffffff", p.Scale(0, 1, 1))
}

func TestLookupPalette(t *testing.T) {
	p, err := LookupPalette("greens")
	require.NoError(t, err)
	assert.Equal(t, Palettes["Greens"][0], p[0])

	r, err := LookupPalette("Greens_r")
	require.NoError(t, err)
	assert.Equal(t, Palettes["Greens"][0], r[len(r)-1])

	_, err = LookupPalette("Magma")
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatPNG, FormatFor("plot.PNG"))
	assert.Equal(t, FormatSVG, FormatFor("plot.svg"))
	assert.Equal(t, FormatHTML, FormatFor("volcano.html"))
	assert.Equal(t, FormatHTML, FormatFor("volcano"))
}
