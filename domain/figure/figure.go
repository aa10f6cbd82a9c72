// Package figure describes plots independently of how they are drawn.
package figure

import "math"

// Range is a closed axis interval
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Series is a set of scatter points drawn with one color and legend entry
type Series struct {
	Name    string    `json:"name"`
	Color   string    `json:"color"`
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
	Sizes   []float64 `json:"sizes,omitempty"`
	Colors  []string  `json:"colors,omitempty"`
	Size    float64   `json:"size"`
	Opacity float64   `json:"opacity,omitempty"`
	Text    []string  `json:"text,omitempty"`
}

// ColorAt returns the color of point i
func (s Series) ColorAt(i int) string {
	if i < len(s.Colors) {
		return s.Colors[i]
	}
	return s.Color
}

// SizeAt returns the marker size of point i
func (s Series) SizeAt(i int) float64 {
	if i < len(s.Sizes) {
		return s.Sizes[i]
	}
	return s.Size
}

// Line is a polyline guide such as a threshold
type Line struct {
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Dashed bool      `json:"dashed"`
}

// Label is free text anchored at a data coordinate
type Label struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// Figure is a scatter plot with optional guides and labels
type Figure struct {
	Title  string   `json:"title"`
	XTitle string   `json:"x_title"`
	YTitle string   `json:"y_title"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	XRange *Range   `json:"x_range,omitempty"`
	YRange *Range   `json:"y_range,omitempty"`
	Series []Series `json:"series"`
	Lines  []Line   `json:"lines,omitempty"`
	Labels []Label  `json:"labels,omitempty"`
	// HideAxes suppresses axis ticks, used for network layouts
	HideAxes   bool `json:"hide_axes,omitempty"`
	HideLegend bool `json:"hide_legend,omitempty"`
}

// Points counts scatter points across series
func (f Figure) Points() int {
	n := 0
	for _, s := range f.Series {
		n += len(s.X)
	}
	return n
}

// Bar is one category in a bar chart
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BarChart is a single-series categorical chart
type BarChart struct {
	Title  string `json:"title"`
	YTitle string `json:"y_title"`
	Color  string `json:"color"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bars   []Bar  `json:"bars"`
}

// Bounds returns the minimum and maximum finite values. ok is false when
// there are none.
func Bounds(values ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// SymmetricRange spans +/- pad times the largest finite magnitude
func SymmetricRange(values []float64, pad float64) Range {
	lo, hi, ok := Bounds(values)
	if !ok {
		return Range{Min: -1, Max: 1}
	}
	m := math.Max(math.Abs(lo), math.Abs(hi)) * pad
	if m == 0 {
		m = 1
	}
	return Range{Min: -m, Max: m}
}

// UpperRange runs from max(0, min) to pad times the finite maximum
func UpperRange(values []float64, pad float64) Range {
	lo, hi, ok := Bounds(values)
	if !ok {
		return Range{Min: 0, Max: 1}
	}
	r := Range{Min: math.Max(0, lo), Max: hi * pad}
	if r.Max <= r.Min {
		r.Max = r.Min + 1
	}
	return r
}

// HLine is a horizontal segment at y from x0 to x1
func HLine(name, color string, y, x0, x1 float64, dashed bool) Line {
	return Line{Name: name, Color: color, X: []float64{x0, x1}, Y: []float64{y, y}, Dashed: dashed}
}

// Hyperbola samples y = c / x at n points between x0 and x1. x0 and x1 must
// lie on the same side of zero.
func Hyperbola(name, color string, c, x0, x1 float64, n int) Line {
	if n < 2 {
		n = 2
	}
	l := Line{Name: name, Color: color, X: make([]float64, n), Y: make([]float64, n), Dashed: true}
	step := (x1 - x0) / float64(n-1)
	for i := 0; i < n; i++ {
		x := x0 + float64(i)*step
		l.X[i] = x
		l.Y[i] = c / x
	}
	return l
}
