package profiling

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Rank assigns 1-based ranks, averaging ties
func Rank(data []float64) []float64 {
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	ranks := make([]float64, len(data))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Spearman is the Pearson correlation of ranks over pairs where both values are present.
// A constant input gives NaN.
func Spearman(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if i >= len(y) || math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(Rank(xs), Rank(ys), nil)
}

// CorrelationMatrix holds pairwise Spearman correlations in sample order
type CorrelationMatrix struct {
	Samples []string    `json:"samples"`
	Values  [][]float64 `json:"values"`
}

// SpearmanMatrix correlates every pair of columns
func SpearmanMatrix(samples []string, columns map[string][]float64) CorrelationMatrix {
	n := len(samples)
	m := CorrelationMatrix{Samples: samples, Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := Spearman(columns[samples[i]], columns[samples[j]])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}
