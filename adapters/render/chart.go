package render

import (
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"screenviz/domain/figure"
	"screenviz/internal/errors"
)

const (
	defaultWidth  = 1000
	defaultHeight = 700
	rangePadding  = 0.05
)

// ChartRenderer draws figures with go-chart
type ChartRenderer struct{}

// NewChartRenderer creates a chart renderer
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

// Color converts "#rrggbb" to a drawing color with the given opacity (0 means opaque)
func Color(hex string, opacity float64) drawing.Color {
	c := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	if opacity > 0 && opacity < 1 {
		c = c.WithAlpha(uint8(math.Round(opacity * 255)))
	}
	return c
}

func provider(format figure.Format) chart.RendererProvider {
	if format == figure.FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Scatter renders a scatter figure as SVG or PNG. Points with non-finite
// coordinates are pinned to the axis range when one is set and dropped otherwise.
func (r *ChartRenderer) Scatter(w io.Writer, fig figure.Figure, format figure.Format) error {
	xr, yr := axisRanges(fig)

	graph := chart.Chart{
		Title:  fig.Title,
		Width:  orDefault(fig.Width, defaultWidth),
		Height: orDefault(fig.Height, defaultHeight),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Name: fig.XTitle, Range: &chart.ContinuousRange{Min: xr.Min, Max: xr.Max}},
		YAxis: chart.YAxis{Name: fig.YTitle, Range: &chart.ContinuousRange{Min: yr.Min, Max: yr.Max}},
	}
	if fig.HideAxes {
		blank := func(interface{}) string { return "" }
		graph.XAxis.ValueFormatter = blank
		graph.YAxis.ValueFormatter = blank
	}

	for _, l := range fig.Lines {
		style := chart.Style{
			StrokeColor: Color(l.Color, 0),
			StrokeWidth: 1.5,
		}
		if l.Dashed {
			style.StrokeDashArray = []float64{5, 5}
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    l.Name,
			XValues: l.X,
			YValues: l.Y,
			Style:   style,
		})
	}

	for _, s := range fig.Series {
		xs, ys, sizes, colors := finitePoints(s, fig.XRange, fig.YRange)
		if len(xs) == 0 {
			continue
		}
		style := chart.Style{
			StrokeWidth: chart.Disabled,
			DotColor:    Color(s.Color, s.Opacity),
			DotWidth:    s.Size / 2,
		}
		if s.Sizes != nil {
			style.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
				return sizes[index] / 2
			}
		}
		if s.Colors != nil {
			style.DotColorProvider = func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return Color(colors[index], s.Opacity)
			}
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	if len(fig.Labels) > 0 {
		annotations := make([]chart.Value2, 0, len(fig.Labels))
		for _, l := range fig.Labels {
			annotations = append(annotations, chart.Value2{XValue: l.X, YValue: l.Y, Label: l.Text})
		}
		graph.Series = append(graph.Series, chart.AnnotationSeries{Annotations: annotations})
	}

	if len(graph.Series) == 0 {
		return errors.InvalidInput("nothing to plot: every point is missing a coordinate")
	}
	if !fig.HideLegend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	if err := graph.Render(provider(format), w); err != nil {
		return errors.Wrap(err, "failed to render chart")
	}
	return nil
}

// Bars renders a bar chart
func (r *ChartRenderer) Bars(w io.Writer, bc figure.BarChart, format figure.Format) error {
	if len(bc.Bars) == 0 {
		return errors.InvalidInput("bar chart has no bars")
	}

	const barWidth, barSpacing = 40, 20
	width := orDefault(bc.Width, defaultWidth)
	if need := len(bc.Bars)*(barWidth+barSpacing) + 120; need > width {
		width = need
	}

	top := 0.0
	values := make([]chart.Value, len(bc.Bars))
	for i, b := range bc.Bars {
		v := b.Value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		top = math.Max(top, v)
		values[i] = chart.Value{
			Label: b.Label,
			Value: v,
			Style: chart.Style{FillColor: Color(bc.Color, 0), StrokeColor: Color(bc.Color, 0)},
		}
	}
	if top == 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:      bc.Title,
		Width:      width,
		Height:     orDefault(bc.Height, 500),
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Name:  bc.YTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: values,
	}
	if err := graph.Render(provider(format), w); err != nil {
		return errors.Wrap(err, "failed to render bar chart")
	}
	return nil
}

// axisRanges uses the figure's ranges or derives padded ones from the data
func axisRanges(fig figure.Figure) (figure.Range, figure.Range) {
	var xs, ys [][]float64
	for _, s := range fig.Series {
		xs = append(xs, s.X)
		ys = append(ys, s.Y)
	}
	for _, l := range fig.Lines {
		xs = append(xs, l.X)
		ys = append(ys, l.Y)
	}
	for _, l := range fig.Labels {
		xs = append(xs, []float64{l.X})
		ys = append(ys, []float64{l.Y})
	}
	return resolveRange(fig.XRange, xs), resolveRange(fig.YRange, ys)
}

func resolveRange(given *figure.Range, values [][]float64) figure.Range {
	if given != nil && given.Max > given.Min {
		return *given
	}
	lo, hi, ok := figure.Bounds(values...)
	if !ok {
		return figure.Range{Min: 0, Max: 1}
	}
	pad := (hi - lo) * rangePadding
	if pad == 0 {
		pad = 1
	}
	return figure.Range{Min: lo - pad, Max: hi + pad}
}

// finitePoints drops NaN coordinates and pins infinities to the given ranges
func finitePoints(s figure.Series, xr, yr *figure.Range) (xs, ys, sizes []float64, colors []string) {
	for i := range s.X {
		if i >= len(s.Y) {
			break
		}
		x, okx := pin(s.X[i], xr)
		y, oky := pin(s.Y[i], yr)
		if !okx || !oky {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
		sizes = append(sizes, s.SizeAt(i))
		colors = append(colors, s.ColorAt(i))
	}
	return xs, ys, sizes, colors
}

func pin(v float64, r *figure.Range) (float64, bool) {
	switch {
	case math.IsNaN(v):
		return 0, false
	case math.IsInf(v, 1):
		if r == nil {
			return 0, false
		}
		return r.Max, true
	case math.IsInf(v, -1):
		if r == nil {
			return 0, false
		}
		return r.Min, true
	}
	return v, true
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
