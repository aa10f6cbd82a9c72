package qc

import (
	"math"
	"strconv"
)

const (
	DefaultOpacity    = 0.8
	SelectedOpacity   = 1.0
	UnselectedOpacity = 0.25
)

// Rect is a rectangular selection in plot coordinates. Bounds are inclusive
// and may be given in either order.
type Rect struct {
	X0, X1, Y0, Y1 float64
}

// Contains reports whether (x, y) lies inside the rectangle
func (r Rect) Contains(x, y float64) bool {
	xlo, xhi := math.Min(r.X0, r.X1), math.Max(r.X0, r.X1)
	ylo, yhi := math.Min(r.Y0, r.Y1), math.Max(r.Y0, r.Y1)
	return x >= xlo && x <= xhi && y >= ylo && y <= yhi
}

// SelectRows returns row indices inside rect for the x/y sample pair. A nil rect selects every row.
func (m *CountMatrix) SelectRows(xSample, ySample string, logTransform bool, rect *Rect) ([]int, error) {
	xs, err := m.Values(xSample, logTransform)
	if err != nil {
		return nil, err
	}
	ys, err := m.Values(ySample, logTransform)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(xs))
	for i := range xs {
		if rect == nil || rect.Contains(xs[i], ys[i]) {
			out = append(out, i)
		}
	}
	return out, nil
}

// ScatterPoint is one guide in a sample-vs-sample scatter
type ScatterPoint struct {
	Index       int     `json:"index"`
	Guide       string  `json:"guide"`
	Gene        string  `json:"gene"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Highlighted bool    `json:"highlighted"`
	Opacity     float64 `json:"opacity"`
}

// ScatterView is everything the scatter panel draws
type ScatterView struct {
	XSample   string         `json:"x_sample"`
	YSample   string         `json:"y_sample"`
	XTitle    string         `json:"x_title"`
	YTitle    string         `json:"y_title"`
	Points    []ScatterPoint `json:"points"`
	Diagonal  [2]float64     `json:"diagonal"`
	Selection *Rect          `json:"selection,omitempty"`
}

// Scatter builds the sample-vs-sample view. Points inside the selection get
// SelectedOpacity and the rest UnselectedOpacity; without a selection every
// point gets DefaultOpacity. Guides missing a count in either sample are
// left out, so Index refers to the matrix row and not the position in Points.
// The diagonal spans the combined x/y range.
func (m *CountMatrix) Scatter(xSample, ySample string, logTransform bool, highlight string, selection *Rect) (*ScatterView, error) {
	xs, err := m.Values(xSample, logTransform)
	if err != nil {
		return nil, err
	}
	ys, err := m.Values(ySample, logTransform)
	if err != nil {
		return nil, err
	}

	view := &ScatterView{
		XSample:   xSample,
		YSample:   ySample,
		XTitle:    axisTitle(xSample, logTransform),
		YTitle:    axisTitle(ySample, logTransform),
		Points:    make([]ScatterPoint, 0, len(xs)),
		Selection: selection,
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		opacity := DefaultOpacity
		if selection != nil {
			opacity = UnselectedOpacity
			if selection.Contains(xs[i], ys[i]) {
				opacity = SelectedOpacity
			}
		}
		view.Points = append(view.Points, ScatterPoint{
			Index:       i,
			Guide:       m.Guides[i],
			Gene:        m.Genes[i],
			X:           xs[i],
			Y:           ys[i],
			Highlighted: highlight != "" && m.Genes[i] == highlight,
			Opacity:     opacity,
		})
		lo = math.Min(lo, math.Min(xs[i], ys[i]))
		hi = math.Max(hi, math.Max(xs[i], ys[i]))
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 0
	}
	view.Diagonal = [2]float64{lo, hi}
	return view, nil
}

func axisTitle(sample string, logTransform bool) string {
	if logTransform {
		return "Log10p[ " + sample + " ]"
	}
	return sample
}

// Rows renders the guide, gene and sample cells of the given row indices,
// raw or log-transformed, for tables and exports
func (m *CountMatrix) Rows(indices []int, logTransform bool) ([]string, [][]string) {
	headers := append([]string{m.GuideColumn, m.GeneColumn}, m.Samples...)
	src := m.raw
	if logTransform {
		src = m.log
	}
	rows := make([][]string, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= m.Len() {
			continue
		}
		row := make([]string, 0, len(headers))
		row = append(row, m.Guides[i], m.Genes[i])
		for _, s := range m.Samples {
			row = append(row, formatCount(src[s][i]))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func formatCount(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
