// Package enrichment runs gene-set over-representation analysis.
package enrichment

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// GeneSet is one term of a gene-set library
type GeneSet struct {
	Term  string
	Genes []string
}

// Library is a named collection of gene sets, usually read from a GMT file
type Library struct {
	Name string
	Sets []GeneSet
}

// Result is the enrichment of one term
type Result struct {
	GeneSet       string   `json:"gene_set"`
	Term          string   `json:"term"`
	Overlap       int      `json:"overlap"`
	TermSize      int      `json:"term_size"`
	PValue        float64  `json:"p_value"`
	AdjustedP     float64  `json:"adjusted_p_value"`
	OddsRatio     float64  `json:"odds_ratio"`
	CombinedScore float64  `json:"combined_score"`
	Genes         []string `json:"genes"`
}

// OverlapString renders the overlap as "k/K"
func (r Result) OverlapString() string {
	return strconv.Itoa(r.Overlap) + "/" + strconv.Itoa(r.TermSize)
}

// Headers are the column names of the exported enrichment table
var Headers = []string{"Gene_set", "Term", "Overlap", "P-value", "Adjusted P-value", "Odds Ratio", "Combined Score", "Genes"}

// Row renders a result as table cells
func (r Result) Row() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
	return []string{r.GeneSet, r.Term, r.OverlapString(), f(r.PValue), f(r.AdjustedP), f(r.OddsRatio), f(r.CombinedScore), strings.Join(r.Genes, ";")}
}

// Analyze tests every term for over-representation of query genes among
// background genes. Term membership is restricted to the background and
// query genes outside the background are ignored. Results come back sorted
// by adjusted p-value, then p-value, then term.
func Analyze(lib Library, query, background []string) []Result {
	bg := make(map[string]struct{}, len(background))
	for _, g := range background {
		bg[g] = struct{}{}
	}
	q := make(map[string]struct{}, len(query))
	for _, g := range query {
		if _, ok := bg[g]; ok {
			q[g] = struct{}{}
		}
	}
	N, n := len(bg), len(q)
	if n == 0 || N == 0 {
		return nil
	}

	var results []Result
	for _, set := range lib.Sets {
		seen := make(map[string]struct{}, len(set.Genes))
		var hits []string
		K := 0
		for _, g := range set.Genes {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			if _, ok := bg[g]; !ok {
				continue
			}
			K++
			if _, ok := q[g]; ok {
				hits = append(hits, g)
			}
		}
		k := len(hits)
		if k == 0 {
			continue
		}
		sort.Strings(hits)

		p := HypergeomUpperTail(k, K, n, N)
		or := OddsRatio(k, K, n, N)
		results = append(results, Result{
			GeneSet:       lib.Name,
			Term:          set.Term,
			Overlap:       k,
			TermSize:      K,
			PValue:        p,
			OddsRatio:     or,
			CombinedScore: or * -math.Log(math.Max(p, math.SmallestNonzeroFloat64)),
			Genes:         hits,
		})
	}

	pvals := make([]float64, len(results))
	for i, r := range results {
		pvals[i] = r.PValue
	}
	for i, adj := range BenjaminiHochberg(pvals) {
		results[i].AdjustedP = adj
	}

	sort.SliceStable(results, func(a, b int) bool {
		ra, rb := results[a], results[b]
		if ra.AdjustedP != rb.AdjustedP {
			return ra.AdjustedP < rb.AdjustedP
		}
		if ra.PValue != rb.PValue {
			return ra.PValue < rb.PValue
		}
		return ra.Term < rb.Term
	})
	return results
}

// Filter keeps results with adjusted p below threshold, at most top of them (top <= 0 keeps all)
func Filter(results []Result, threshold float64, top int) []Result {
	var out []Result
	for _, r := range results {
		if r.AdjustedP < threshold {
			out = append(out, r)
		}
	}
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// HypergeomUpperTail is P(X >= k) for X ~ Hypergeometric(population N,
// successes K, draws n), summed in log space.
func HypergeomUpperTail(k, K, n, N int) float64 {
	hi := K
	if n < hi {
		hi = n
	}
	lo := k
	if floor := n - (N - K); floor > lo {
		lo = floor
	}
	if lo > hi {
		return 0
	}
	if lo <= 0 {
		return 1
	}

	denom := logChoose(N, n)
	terms := make([]float64, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		terms = append(terms, logChoose(K, i)+logChoose(N-K, n-i)-denom)
	}
	return math.Min(1, math.Exp(floats.LogSumExp(terms)))
}

func logChoose(n, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

// OddsRatio of the 2x2 table of query membership against term membership.
// A zero cell adds 0.5 to every cell.
func OddsRatio(k, K, n, N int) float64 {
	a := float64(k)
	b := float64(n - k)
	c := float64(K - k)
	d := float64(N - K - n + k)
	if a == 0 || b == 0 || c == 0 || d == 0 {
		a, b, c, d = a+0.5, b+0.5, c+0.5, d+0.5
	}
	return (a * d) / (b * c)
}

// BenjaminiHochberg adjusts p-values for false discovery rate, keeping input order
func BenjaminiHochberg(p []float64) []float64 {
	m := len(p)
	adj := make([]float64, m)
	if m == 0 {
		return adj
	}
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })

	running := 1.0
	for rank := m; rank >= 1; rank-- {
		i := order[rank-1]
		v := p[i] * float64(m) / float64(rank)
		if v < running {
			running = v
		}
		adj[i] = running
	}
	return adj
}
