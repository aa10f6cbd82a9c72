package dataset

import (
	"math"
	"strconv"
	"strings"

	"screenviz/domain/screen"
	"screenviz/internal/errors"
)

// Table is a loaded tabular file: ordered headers and string cells
type Table struct {
	Source  string
	Headers []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table and its header index. Rows shorter than the header are padded.
func NewTable(source string, headers []string, rows [][]string) *Table {
	t := &Table{Source: source, Headers: headers, Rows: rows, index: make(map[string]int, len(headers))}
	for i, h := range headers {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	for i, row := range t.Rows {
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			t.Rows[i] = padded
		}
	}
	return t
}

// Len returns the number of data rows
func (t *Table) Len() int { return len(t.Rows) }

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require fails on the first missing column
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if c == "" {
			continue
		}
		if !t.Has(c) {
			return errors.MissingColumn(c, t.Source)
		}
	}
	return nil
}

// Column returns the raw cells of a column
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, errors.MissingColumn(name, t.Source)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Floats parses a column as float64. Cells that do not parse become NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = ParseFloat(c)
	}
	return out, nil
}

// ParseFloat parses a cell, mapping empty and NA-like cells to NaN
func ParseFloat(cell string) float64 {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null", "none":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Columns maps table headers onto record fields. Empty optional names are skipped.
type Columns struct {
	Identifier string
	Gene       string
	FoldChange string
	PValue     string
	Threshold  string
	BaseMean   string
}

// Records converts the table to screen records after checking every named column exists
func (t *Table) Records(cols Columns) ([]screen.Record, error) {
	if err := t.Require(cols.Identifier, cols.FoldChange, cols.PValue, cols.Threshold, cols.Gene, cols.BaseMean); err != nil {
		return nil, err
	}
	if cols.Identifier == "" || cols.FoldChange == "" || cols.PValue == "" || cols.Threshold == "" {
		return nil, errors.ConfigInvalid("identifier, fold change, p-value and threshold columns are required")
	}

	ids, _ := t.Column(cols.Identifier)
	fc, _ := t.Floats(cols.FoldChange)
	pv, _ := t.Floats(cols.PValue)
	th, _ := t.Floats(cols.Threshold)

	var genes []string
	if cols.Gene != "" {
		genes, _ = t.Column(cols.Gene)
	}
	var base []float64
	if cols.BaseMean != "" {
		base, _ = t.Floats(cols.BaseMean)
	}

	records := make([]screen.Record, t.Len())
	for i := range records {
		r := screen.Record{
			Identifier:      ids[i],
			FoldChange:      fc[i],
			PValue:          pv[i],
			ThresholdMetric: th[i],
		}
		if genes != nil {
			r.Gene = genes[i]
		}
		if base != nil {
			r.BaseMean = base[i]
		}
		records[i] = r
	}
	return records, nil
}

// JoinedRow pairs a row index from each side of an inner join
type JoinedRow struct {
	Key   string
	Left  int
	Right int
}

// InnerJoin matches rows of left and right on key columns. Output follows
// left row order; duplicate keys produce every pairing.
func InnerJoin(left, right *Table, leftKey, rightKey string) ([]JoinedRow, error) {
	lk, err := left.Column(leftKey)
	if err != nil {
		return nil, err
	}
	rk, err := right.Column(rightKey)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string][]int, len(rk))
	for i, k := range rk {
		byKey[k] = append(byKey[k], i)
	}

	var out []JoinedRow
	for i, k := range lk {
		for _, j := range byKey[k] {
			out = append(out, JoinedRow{Key: k, Left: i, Right: j})
		}
	}
	return out, nil
}

// Filter returns the rows whose index satisfies keep
func (t *Table) Filter(keep func(i int) bool) [][]string {
	var out [][]string
	for i, row := range t.Rows {
		if keep(i) {
			out = append(out, row)
		}
	}
	return out
}

// RowMaps renders rows as header-keyed maps for JSON responses
func (t *Table) RowMaps(rows [][]string) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		out[i] = m
	}
	return out
}
