package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"os"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"screenviz/domain/figure"
	"screenviz/internal/errors"
)

//go:embed templates/*.html
var templateFiles embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFiles, "templates/report.html"))

type reportView struct {
	Title   string
	Summary template.HTML
	Legend  []figure.LegendEntry
	Figures []template.HTML
	Table   *figure.ReportTable
}

// Markdown converts a markdown summary to HTML
func Markdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}

// WriteHTML renders the report with every figure inlined as SVG
func (r *ChartRenderer) WriteHTML(w io.Writer, rep figure.Report) error {
	view := reportView{
		Title:  rep.Title,
		Legend: rep.Legend,
		Table:  rep.Table,
	}
	if rep.Summary != "" {
		view.Summary = Markdown(rep.Summary)
	}
	for _, fig := range rep.Figures {
		var buf bytes.Buffer
		if err := r.Scatter(&buf, fig, figure.FormatSVG); err != nil {
			return err
		}
		view.Figures = append(view.Figures, template.HTML(buf.String()))
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return errors.Wrap(err, "failed to render report")
	}
	_, err := buf.WriteTo(w)
	return err
}

// Save writes the report to path. PNG and SVG outputs hold the first figure
// only; anything else is written as HTML.
func (r *ChartRenderer) Save(path string, rep figure.Report) error {
	var buf bytes.Buffer
	switch format := figure.FormatFor(path); format {
	case figure.FormatPNG, figure.FormatSVG:
		if len(rep.Figures) == 0 {
			return errors.InvalidInput("report has no figure to save as " + string(format))
		}
		if err := r.Scatter(&buf, rep.Figures[0], format); err != nil {
			return err
		}
	default:
		if err := r.WriteHTML(&buf, rep); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
