package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenviz/internal/errors"
)

func geneTable() *Table {
	return NewTable("genes.tsv",
		[]string{"gene", "log_fold_change", "pvalue", "fdr"},
		[][]string{
			{"KRAS", "2.5", "0.001", "0.01"},
			{"MYC", "-1.2", "0.02", "0.2"},
			{"NA_GENE", "NA", "", "0.5"},
			{"SHORT", "1"},
		})
}

func TestRequire_NamesMissingColumn(t *testing.T) {
	tbl := geneTable()
	require.NoError(t, tbl.Require("gene", "fdr", ""))

	err := tbl.Require("gene", "log2fc")
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))
	assert.Contains(t, err.Error(), "log2fc")
	assert.Contains(t, err.Error(), "genes.tsv")
}

func TestFloats_ParsesAndMapsMissingToNaN(t *testing.T) {
	tbl := geneTable()
	fc, err := tbl.Floats("log_fold_change")
	require.NoError(t, err)
	require.Len(t, fc, 4)
	assert.Equal(t, 2.5, fc[0])
	assert.Equal(t, -1.2, fc[1])
	assert.True(t, math.IsNaN(fc[2]))

	pv, err := tbl.Floats("pvalue")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(pv[2]))
	assert.True(t, math.IsNaN(pv[3]), "short rows are padded with empty cells")
}

func TestRecords(t *testing.T) {
	tbl := geneTable()
	recs, err := tbl.Records(Columns{Identifier: "gene", FoldChange: "log_fold_change", PValue: "pvalue", Threshold: "fdr"})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "KRAS", recs[0].Identifier)
	assert.Equal(t, 0.001, recs[0].PValue)
	assert.Equal(t, 0.01, recs[0].ThresholdMetric)

	_, err = tbl.Records(Columns{Identifier: "gene", FoldChange: "lfc", PValue: "pvalue", Threshold: "fdr"})
	assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))
}

func TestInnerJoin_FollowsLeftOrderAndDropsUnmatched(t *testing.T) {
	a := NewTable("a.tsv", []string{"gene", "pvalue"}, [][]string{{"B", "0.1"}, {"A", "0.2"}, {"C", "0.3"}})
	b := NewTable("b.tsv", []string{"id", "pvalue"}, [][]string{{"A", "0.5"}, {"B", "0.6"}, {"B", "0.7"}})

	joined, err := InnerJoin(a, b, "gene", "id")
	require.NoError(t, err)
	assert.Equal(t, []JoinedRow{
		{Key: "B", Left: 0, Right: 1},
		{Key: "B", Left: 0, Right: 2},
		{Key: "A", Left: 1, Right: 0},
	}, joined)

	_, err = InnerJoin(a, b, "gene", "gene")
	assert.Error(t, err)
}

func TestFilterAndRowMaps(t *testing.T) {
	tbl := geneTable()
	fdr, _ := tbl.Floats("fdr")
	rows := tbl.Filter(func(i int) bool { return fdr[i] < 0.1 })
	require.Len(t, rows, 1)

	maps := tbl.RowMaps(rows)
	assert.Equal(t, "KRAS", maps[0]["gene"])
	assert.Equal(t, "0.01", maps[0]["fdr"])
}
