package table

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"screenviz/internal/errors"
)

// WriteTSV writes a header row and rows as tab-separated values
func WriteTSV(w io.Writer, headers []string, rows [][]string) error {
	return writeDelimited(w, '\t', headers, rows)
}

// WriteCSV writes a header row and rows as comma-separated values
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	return writeDelimited(w, ',', headers, rows)
}

func writeDelimited(w io.Writer, comma rune, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(headers); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "failed to write rows")
	}
	return nil
}

// WriteXLSX writes headers and rows to the first sheet of a new workbook
func WriteXLSX(w io.Writer, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to address row")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+1)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

// Write encodes rows into path using the format implied by its extension
func Write(path string, headers []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	switch FormatFor(path) {
	case FormatXLSX:
		err = WriteXLSX(buf, headers, rows)
	case FormatCSV:
		err = WriteCSV(buf, headers, rows)
	default:
		err = WriteTSV(buf, headers, rows)
	}
	if err != nil {
		return err
	}
	return buf.Flush()
}

// Writer writes tables to files, picking the encoding from the extension
type Writer struct{}

// NewWriter creates a file writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write encodes rows into path
func (w *Writer) Write(path string, headers []string, rows [][]string) error {
	return Write(path, headers, rows)
}
