package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"screenviz/domain/dataset"
	"screenviz/internal"
	"screenviz/internal/errors"
)

// Format is an on-disk table encoding
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the encoding from the file extension. Anything that is not
// .csv or .xlsx is read as tab-separated.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatTSV
	}
}

// Reader loads screen result tables and count matrices
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a reader logging through logger (DefaultLogger when nil)
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{logger: logger}
}

// Read loads a table. A header row and at least one data row are required.
func (r *Reader) Read(path string) (*dataset.Table, error) {
	format := FormatFor(path)
	r.logger.Debug("[TableReader] Starting to read %s file: %s", format, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(string(format)), path))
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch format {
	case FormatXLSX:
		rows, err = r.readExcel(path)
	case FormatCSV:
		rows, err = r.readDelimited(path, ',')
	default:
		rows, err = r.readDelimited(path, '\t')
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[TableReader] %s read in %.2fms (%d rows)", path, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return r.processRows(path, rows)
}

// readExcel reads the first worksheet
func (r *Reader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.EmptyTable(path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	return rows, nil
}

func (r *Reader) readDelimited(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()
	return ReadDelimited(file, comma)
}

// ReadDelimited parses delimiter-separated rows. Quotes are lenient and rows may be ragged.
func ReadDelimited(src io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse delimited file")
	}
	return rows, nil
}

// processRows trims cells and splits off the header row
func (r *Reader) processRows(path string, rows [][]string) (*dataset.Table, error) {
	if len(rows) < 2 {
		return nil, errors.EmptyTable(path)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		cells := make([]string, len(headers))
		for j := 0; j < len(row) && j < len(headers); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		data = append(data, cells)
	}
	if len(data) == 0 {
		return nil, errors.EmptyTable(path)
	}

	r.logger.Debug("[TableReader] %s processed (%d columns, %d rows)", path, len(headers), len(data))
	return dataset.NewTable(path, headers, data), nil
}
