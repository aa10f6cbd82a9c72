package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"screenviz/internal"
	"screenviz/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatTSV, FormatFor("a.tsv"))
	assert.Equal(t, FormatTSV, FormatFor("a.txt"))
	assert.Equal(t, FormatCSV, FormatFor("A.CSV"))
	assert.Equal(t, FormatXLSX, FormatFor("book.xlsx"))
}

func TestRead_TSV(t *testing.T) {
	path := writeFile(t, "genes.tsv", "\ufeffgene\tlog_fold_change\tpvalue\tfdr\nKRAS\t-2.5\t0.001\t0.01\nMYC\t1.2\t0.2\n\n")

	tbl, err := NewReader(internal.NewNopLogger()).Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gene", "log_fold_change", "pvalue", "fdr"}, tbl.Headers)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"MYC", "1.2", "0.2", ""}, tbl.Rows[1])
}

func TestRead_CSV(t *testing.T) {
	path := writeFile(t, "genes.csv", "gene,fdr\n\"A,B\",0.5\n")

	tbl, err := NewReader(internal.NewNopLogger()).Read(path)
	require.NoError(t, err)
	assert.Equal(t, "A,B", tbl.Rows[0][0])
}

func TestRead_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen.xlsx")
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []string{"gene", "fdr"}, [][]string{{"KRAS", "0.01"}, {"TP53", "0.5"}}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	tbl, err := NewReader(internal.NewNopLogger()).Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gene", "fdr"}, tbl.Headers)
	assert.Equal(t, [][]string{{"KRAS", "0.01"}, {"TP53", "0.5"}}, tbl.Rows)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(f.GetSheetName(0), "A3")
	require.NoError(t, err)
	assert.Equal(t, "TP53", v)
}

func TestRead_Errors(t *testing.T) {
	r := NewReader(internal.NewNopLogger())

	_, err := r.Read(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	_, err = r.Read(writeFile(t, "header.tsv", "gene\tfdr\n"))
	assert.True(t, errors.HasCode(err, errors.CodeEmptyTable))
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, []string{"Guide", "Gene"}, [][]string{{"g1", "KRAS"}}))
	assert.Equal(t, "Guide\tGene\ng1\tKRAS\n", buf.String())

	rows, err := ReadDelimited(strings.NewReader(buf.String()), '\t')
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWrite_ByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(path, []string{"a", "b"}, [][]string{{"1", "2"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}
