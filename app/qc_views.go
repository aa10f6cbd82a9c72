package app

import (
	"fmt"

	"screenviz/domain/figure"
	"screenviz/domain/qc"
	"screenviz/internal/profiling"
)

// QC dashboard colors
const (
	QCMarkerColor    = "#ababab"
	QCHighlightColor = "#f68e5f"
	QCDiagonalColor  = "#ff6b6b"
	QCBarColor       = "#007bff"
)

// QCScatterFigure draws a sample-vs-sample scatter. Points are grouped by
// highlight and opacity so a selection dims everything outside it.
func QCScatterFigure(view *qc.ScatterView) figure.Figure {
	fig := figure.Figure{
		Title:  "Scatter Plot",
		XTitle: view.XTitle,
		YTitle: view.YTitle,
		Width:  900,
		Height: 700,
	}

	type key struct {
		highlighted bool
		opacity     float64
	}
	groups := make(map[key]*figure.Series)
	var order []key
	for _, p := range view.Points {
		k := key{p.Highlighted, p.Opacity}
		s, ok := groups[k]
		if !ok {
			s = &figure.Series{Name: "Other guides", Color: QCMarkerColor, Size: 6, Opacity: p.Opacity}
			if p.Highlighted {
				s.Name = p.Gene
				s.Color = QCHighlightColor
				s.Size = 10
			}
			groups[k] = s
			order = append(order, k)
		}
		s.X = append(s.X, p.X)
		s.Y = append(s.Y, p.Y)
		s.Text = append(s.Text, p.Guide)
	}
	// highlighted guides draw last so they sit on top
	for _, highlighted := range []bool{false, true} {
		for _, k := range order {
			if k.highlighted == highlighted {
				fig.Series = append(fig.Series, *groups[k])
			}
		}
	}

	lo, hi := view.Diagonal[0], view.Diagonal[1]
	fig.Lines = []figure.Line{{Name: "A/B Line", Color: QCDiagonalColor, X: []float64{lo, hi}, Y: []float64{lo, hi}, Dashed: true}}
	if sel := view.Selection; sel != nil {
		fig.Lines = append(fig.Lines, figure.Line{
			Name:  "Selection",
			Color: thresholdColor,
			X:     []float64{sel.X0, sel.X1, sel.X1, sel.X0, sel.X0},
			Y:     []float64{sel.Y0, sel.Y0, sel.Y1, sel.Y1, sel.Y0},
		})
	}
	return fig
}

// TotalsChart plots log10 total reads per sample
func TotalsChart(totals []qc.SampleTotal) figure.BarChart {
	bc := figure.BarChart{Title: "Total Read Counts per Sample", YTitle: "Log10[ Total Reads ]", Color: QCBarColor, Width: 800, Height: 600}
	for _, t := range totals {
		bc.Bars = append(bc.Bars, figure.Bar{Label: t.Sample, Value: t.Log10})
	}
	return bc
}

// MembershipChart plots log10(genes + 1) per number of observed sgRNAs
func MembershipChart(sample string, bins []qc.MembershipBin) figure.BarChart {
	if sample == "" {
		sample = qc.AllSamples
	}
	bc := figure.BarChart{
		Title:  fmt.Sprintf("Distribution of Gene Membership Size (%s)", sample),
		YTitle: "Log10[ Number of Genes + 1 ]",
		Color:  QCBarColor,
		Width:  800,
		Height: 555,
	}
	for _, b := range bins {
		bc.Bars = append(bc.Bars, figure.Bar{Label: fmt.Sprint(b.Guides), Value: b.Log10})
	}
	return bc
}

// KDEFigure overlays per-sample densities of log10 counts
func KDEFigure(densities []profiling.Density, palette figure.Palette) figure.Figure {
	fig := figure.Figure{
		Title:  "Distribution of Log10 sgRNA Counts",
		XTitle: "Counts",
		YTitle: "Density",
		Width:  900,
		Height: 600,
	}
	for i, d := range densities {
		t := 0.0
		if len(densities) > 1 {
			t = float64(i) / float64(len(densities)-1)
		}
		fig.Lines = append(fig.Lines, figure.Line{Name: d.Sample, Color: palette.At(t), X: d.X, Y: d.Y})
	}
	return fig
}
