package app

import (
	"io"
	"sync"

	"screenviz/domain/dataset"
	"screenviz/domain/enrichment"
	"screenviz/domain/figure"
	"screenviz/internal/errors"
)

type fakeReader struct {
	tables map[string]*dataset.Table
}

func (f *fakeReader) Read(path string) (*dataset.Table, error) {
	t, ok := f.tables[path]
	if !ok {
		return nil, errors.NotFound("file " + path)
	}
	return t, nil
}

type fakeRenderer struct {
	mu    sync.Mutex
	saved map[string]figure.Report
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{saved: make(map[string]figure.Report)}
}

func (f *fakeRenderer) Scatter(w io.Writer, fig figure.Figure, format figure.Format) error {
	_, err := io.WriteString(w, "<svg></svg>")
	return err
}

func (f *fakeRenderer) Bars(w io.Writer, bc figure.BarChart, format figure.Format) error {
	_, err := io.WriteString(w, "<svg></svg>")
	return err
}

func (f *fakeRenderer) WriteHTML(w io.Writer, rep figure.Report) error {
	_, err := io.WriteString(w, rep.Title)
	return err
}

func (f *fakeRenderer) Save(path string, rep figure.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[path] = rep
	return nil
}

type fakeWriter struct {
	path    string
	headers []string
	rows    [][]string
}

func (f *fakeWriter) Write(path string, headers []string, rows [][]string) error {
	f.path, f.headers, f.rows = path, headers, rows
	return nil
}

type fakeGeneSets struct {
	lib enrichment.Library
}

func (f *fakeGeneSets) Load(name string) (enrichment.Library, error) {
	if name != f.lib.Name {
		return enrichment.Library{}, errors.NotFound("gene set library " + name)
	}
	return f.lib, nil
}

func table(source string, headers []string, rows ...[]string) *dataset.Table {
	return dataset.NewTable(source, headers, rows)
}
