package qc

import (
	"math"
	"sort"

	"screenviz/domain/dataset"
	"screenviz/internal/errors"
)

// AllSamples selects every sample column in membership views
const AllSamples = "All Samples"

// CountMatrix is an sgRNA count table: one guide and gene per row, one column per sample
type CountMatrix struct {
	GuideColumn string
	GeneColumn  string
	Guides      []string
	Genes       []string
	Samples     []string

	raw map[string][]float64
	log map[string][]float64
}

// NewCountMatrix treats every column other than the guide and gene columns as a sample
func NewCountMatrix(t *dataset.Table, guideColumn, geneColumn string) (*CountMatrix, error) {
	if err := t.Require(guideColumn, geneColumn); err != nil {
		return nil, err
	}
	guides, _ := t.Column(guideColumn)
	genes, _ := t.Column(geneColumn)

	m := &CountMatrix{
		GuideColumn: guideColumn,
		GeneColumn:  geneColumn,
		Guides:      guides,
		Genes:       genes,
		raw:         make(map[string][]float64),
		log:         make(map[string][]float64),
	}
	for _, h := range t.Headers {
		if h == guideColumn || h == geneColumn {
			continue
		}
		values, _ := t.Floats(h)
		logged := make([]float64, len(values))
		for i, v := range values {
			// blank, NA and infinite cells are missing counts
			if math.IsInf(v, 0) {
				values[i] = math.NaN()
			}
			logged[i] = Log10p(values[i])
		}
		m.Samples = append(m.Samples, h)
		m.raw[h] = values
		m.log[h] = logged
	}
	if len(m.Samples) == 0 {
		return nil, errors.InvalidInput("count matrix " + t.Source + " has no sample columns")
	}
	return m, nil
}

// Log10p is log10(x+1) with negative counts clipped to zero
func Log10p(v float64) float64 {
	return math.Log10(math.Max(v, 0) + 1)
}

// Len returns the number of guides
func (m *CountMatrix) Len() int { return len(m.Guides) }

// Values returns a sample column, raw or log-transformed
func (m *CountMatrix) Values(sample string, logTransform bool) ([]float64, error) {
	src := m.raw
	if logTransform {
		src = m.log
	}
	v, ok := src[sample]
	if !ok {
		return nil, errors.NotFound("sample " + sample)
	}
	return v, nil
}

// SampleTotal is the summed read count of one sample
type SampleTotal struct {
	Sample string  `json:"sample"`
	Total  float64 `json:"total"`
	Log10  float64 `json:"log10"`
}

// TotalReads sums raw counts per sample, skipping NaN cells. Log10 is zero for an empty sample.
func (m *CountMatrix) TotalReads() []SampleTotal {
	out := make([]SampleTotal, len(m.Samples))
	for i, s := range m.Samples {
		var sum float64
		for _, v := range m.raw[s] {
			if !math.IsNaN(v) {
				sum += v
			}
		}
		out[i] = SampleTotal{Sample: s, Total: sum}
		if sum > 0 {
			out[i].Log10 = math.Log10(sum)
		}
	}
	return out
}

// GeneList returns the sorted unique genes
func (m *CountMatrix) GeneList() []string {
	seen := make(map[string]struct{}, len(m.Genes))
	var out []string
	for _, g := range m.Genes {
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultHighlight picks preferred when present, otherwise the first gene
func (m *CountMatrix) DefaultHighlight(preferred string) string {
	genes := m.GeneList()
	for _, g := range genes {
		if g == preferred {
			return g
		}
	}
	if len(genes) == 0 {
		return ""
	}
	return genes[0]
}

// present reports whether guide i has a nonzero count in sample, or in any sample for AllSamples
func (m *CountMatrix) present(i int, sample string) bool {
	if sample == "" || sample == AllSamples {
		for _, s := range m.Samples {
			if m.raw[s][i] > 0 {
				return true
			}
		}
		return false
	}
	col, ok := m.raw[sample]
	return ok && col[i] > 0
}

// GeneCount is the number of guides observed for a gene
type GeneCount struct {
	Gene   string `json:"Gene"`
	Guides int    `json:"Number of sgRNAs"`
}

func (m *CountMatrix) guidesPerGene(keep func(i int) bool) map[string]int {
	counts := make(map[string]int)
	for i, g := range m.Genes {
		if keep(i) {
			counts[g]++
		}
	}
	return counts
}

// GeneMembership counts guides per gene, descending by count then by name.
// AllSamples counts every guide; a named sample counts guides with a nonzero count there.
func (m *CountMatrix) GeneMembership(sample string) []GeneCount {
	keep := func(int) bool { return true }
	if sample != "" && sample != AllSamples {
		keep = func(i int) bool { return m.present(i, sample) }
	}
	counts := m.guidesPerGene(keep)

	out := make([]GeneCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, GeneCount{Gene: g, Guides: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Guides != out[b].Guides {
			return out[a].Guides > out[b].Guides
		}
		return out[a].Gene < out[b].Gene
	})
	return out
}

// MembershipBin is the number of genes having a given number of observed guides
type MembershipBin struct {
	Guides int     `json:"sgrnas"`
	Genes  int     `json:"genes"`
	Log10  float64 `json:"log10"`
}

// MembershipHistogram bins genes by their number of observed guides, ascending
func (m *CountMatrix) MembershipHistogram(sample string) []MembershipBin {
	perGene := m.guidesPerGene(func(i int) bool { return m.present(i, sample) })

	bins := make(map[int]int)
	for _, n := range perGene {
		bins[n]++
	}
	out := make([]MembershipBin, 0, len(bins))
	for k, n := range bins {
		out = append(out, MembershipBin{Guides: k, Genes: n, Log10: math.Log10(float64(n) + 1)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Guides < out[b].Guides })
	return out
}
