package ports

import (
	"io"

	"screenviz/domain/figure"
)

// ChartRendererPort draws figures and writes standalone reports
type ChartRendererPort interface {
	Scatter(w io.Writer, fig figure.Figure, format figure.Format) error
	Bars(w io.Writer, bc figure.BarChart, format figure.Format) error
	WriteHTML(w io.Writer, rep figure.Report) error
	Save(path string, rep figure.Report) error
}
