package enrichment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHypergeomUpperTail(t *testing.T) {
	assert.InDelta(t, 3.0/45, HypergeomUpperTail(2, 3, 2, 10), 1e-12)
	assert.InDelta(t, 24.0/45, HypergeomUpperTail(1, 3, 2, 10), 1e-12)
	assert.Equal(t, 1.0, HypergeomUpperTail(0, 3, 2, 10))
	assert.Equal(t, 0.0, HypergeomUpperTail(3, 3, 2, 10))
	// support starts at n-(N-K) = 1, so X >= 1 is certain
	assert.InDelta(t, 1.0, HypergeomUpperTail(1, 9, 2, 10), 1e-12)
}

func TestBenjaminiHochberg(t *testing.T) {
	adj := BenjaminiHochberg([]float64{0.01, 0.04, 0.03, 0.2})
	want := []float64{0.04, 0.16 / 3, 0.16 / 3, 0.2}
	for i := range want {
		assert.InDelta(t, want[i], adj[i], 1e-12)
	}
	assert.Empty(t, BenjaminiHochberg(nil))
}

func TestOddsRatio(t *testing.T) {
	// a=2 b=1 c=1 d=6
	assert.InDelta(t, 12.0, OddsRatio(2, 3, 3, 10), 1e-12)
	// zero cell gets the 0.5 correction: a=2.5 b=0.5 c=1.5 d=7.5
	assert.InDelta(t, 25.0, OddsRatio(2, 3, 2, 10), 1e-12)
}

func TestAnalyze(t *testing.T) {
	lib := Library{Name: "toy", Sets: []GeneSet{
		{Term: "ras signalling", Genes: []string{"KRAS", "NRAS", "HRAS", "KRAS", "NOTINBG"}},
		{Term: "cell cycle", Genes: []string{"CDK1", "CDK2", "KRAS"}},
		{Term: "unrelated", Genes: []string{"ACTB"}},
	}}
	background := []string{"KRAS", "NRAS", "HRAS", "CDK1", "CDK2", "ACTB", "GAPDH", "TP53", "MYC", "EGFR"}

	results := Analyze(lib, []string{"KRAS", "NRAS", "ELSEWHERE"}, background)
	require.Len(t, results, 2)

	top := results[0]
	assert.Equal(t, "ras signalling", top.Term)
	assert.Equal(t, "toy", top.GeneSet)
	assert.Equal(t, 2, top.Overlap)
	assert.Equal(t, 3, top.TermSize)
	assert.Equal(t, "2/3", top.OverlapString())
	assert.Equal(t, []string{"KRAS", "NRAS"}, top.Genes)
	assert.InDelta(t, 3.0/45, top.PValue, 1e-12)
	assert.InDelta(t, 2*3.0/45, top.AdjustedP, 1e-12)
	assert.False(t, math.IsNaN(top.CombinedScore))

	assert.Equal(t, "cell cycle", results[1].Term)
	assert.Len(t, top.Row(), len(Headers))
}

func TestAnalyze_EmptyQuery(t *testing.T) {
	lib := Library{Sets: []GeneSet{{Term: "t", Genes: []string{"A"}}}}
	assert.Nil(t, Analyze(lib, nil, []string{"A"}))
	assert.Nil(t, Analyze(lib, []string{"B"}, []string{"A"}))
}

func TestFilter(t *testing.T) {
	rs := []Result{{Term: "a", AdjustedP: 0.01}, {Term: "b", AdjustedP: 0.05}, {Term: "c", AdjustedP: 0.5}}
	assert.Len(t, Filter(rs, 0.1, 0), 2)
	assert.Len(t, Filter(rs, 0.1, 1), 1)
	assert.Empty(t, Filter(rs, 0.001, 30))
}
