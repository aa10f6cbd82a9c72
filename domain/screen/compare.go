package screen

// ComparisonLabel classifies a key present in two screens
type ComparisonLabel string

const (
	SignificantInBoth ComparisonLabel = "Significant in both"
	SignificantInA    ComparisonLabel = "Significant in A"
	SignificantInB    ComparisonLabel = "Significant in B"
	SignificantInNone ComparisonLabel = "Not significant"
)

// ComparisonLabels lists comparison labels in legend order
var ComparisonLabels = []ComparisonLabel{SignificantInBoth, SignificantInA, SignificantInB, SignificantInNone}

// ClassifyComparison combines per-screen significance
func ClassifyComparison(significantA, significantB bool) ComparisonLabel {
	switch {
	case significantA && significantB:
		return SignificantInBoth
	case significantA:
		return SignificantInA
	case significantB:
		return SignificantInB
	default:
		return SignificantInNone
	}
}

// ComparisonRecord is one joined key with the plotted statistic and threshold metric from each screen
type ComparisonRecord struct {
	Key        string
	ValueA     float64
	ValueB     float64
	ThresholdA float64
	ThresholdB float64

	X              float64
	Y              float64
	SignificantA   bool
	SignificantB   bool
	Classification ComparisonLabel
	Size           MarkerSize
}

// DeriveComparison fills the derived fields of joined records. X and Y are
// -log10 of the plotted values when the matching transform flag is set.
func DeriveComparison(records []ComparisonRecord, threshold float64, logA, logB bool) []ComparisonRecord {
	out := make([]ComparisonRecord, len(records))
	for i, r := range records {
		r.SignificantA = r.ThresholdA < threshold
		r.SignificantB = r.ThresholdB < threshold
		r.Classification = ClassifyComparison(r.SignificantA, r.SignificantB)
		r.Size = SizeFor(r.SignificantA || r.SignificantB)
		r.X = r.ValueA
		if logA {
			r.X = LogSignificance(r.ValueA)
		}
		r.Y = r.ValueB
		if logB {
			r.Y = LogSignificance(r.ValueB)
		}
		out[i] = r
	}
	return out
}
