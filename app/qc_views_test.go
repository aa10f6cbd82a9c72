package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenviz/domain/figure"
	"screenviz/domain/qc"
	"screenviz/internal/profiling"
)

func TestQCScatterFigure(t *testing.T) {
	view := &qc.ScatterView{
		XTitle: "Log10p[ S1 ]",
		YTitle: "Log10p[ S2 ]",
		Points: []qc.ScatterPoint{
			{Guide: "g1", Gene: "KRAS", X: 1, Y: 1, Highlighted: true, Opacity: qc.SelectedOpacity},
			{Guide: "g2", Gene: "MYC", X: 2, Y: 0, Opacity: qc.SelectedOpacity},
			{Guide: "g3", Gene: "MYC", X: 3, Y: 4, Opacity: qc.UnselectedOpacity},
		},
		Diagonal:  [2]float64{0, 4},
		Selection: &qc.Rect{X0: 0, X1: 2, Y0: 0, Y1: 1},
	}
	fig := QCScatterFigure(view)

	require.Len(t, fig.Series, 3)
	last := fig.Series[len(fig.Series)-1]
	assert.Equal(t, "KRAS", last.Name, "highlighted guides draw last")
	assert.Equal(t, QCHighlightColor, last.Color)

	require.Len(t, fig.Lines, 2)
	assert.Equal(t, []float64{0, 4}, fig.Lines[0].X)
	assert.Len(t, fig.Lines[1].X, 5)
}

func TestTotalsAndMembershipCharts(t *testing.T) {
	bc := TotalsChart([]qc.SampleTotal{{Sample: "S1", Total: 100, Log10: 2}})
	require.Len(t, bc.Bars, 1)
	assert.Equal(t, figure.Bar{Label: "S1", Value: 2}, bc.Bars[0])

	mc := MembershipChart("", []qc.MembershipBin{{Guides: 4, Genes: 9, Log10: 1}})
	assert.Equal(t, "Distribution of Gene Membership Size (All Samples)", mc.Title)
	assert.Equal(t, "4", mc.Bars[0].Label)
}

func TestKDEFigure(t *testing.T) {
	fig := KDEFigure([]profiling.Density{
		{Sample: "S1", X: []float64{0, 1}, Y: []float64{0.5, 0.5}},
		{Sample: "S2", X: []float64{0, 1}, Y: []float64{0.2, 0.8}},
	}, figure.Palettes["Viridis"])
	require.Len(t, fig.Lines, 2)
	assert.Equal(t, "S2", fig.Lines[1].Name)
	assert.NotEqual(t, fig.Lines[0].Color, fig.Lines[1].Color)
}
