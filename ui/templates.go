package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"screenviz/domain/figure"
)

//go:embed templates/*.html
var templateFS embed.FS

// correlationPalette colors the correlation matrix cells from -1 to 1
var correlationPalette = figure.Palettes["RdBu"].Reversed()

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"heat": func(r float64) template.CSS {
			if math.IsNaN(r) {
				return template.CSS("#ffffff")
			}
			return template.CSS(correlationPalette.Scale(r, -1, 1))
		},
	}
	t, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

// renderTemplate executes into a buffer; w is left untouched on error
func renderTemplate(w io.Writer, t *template.Template, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
