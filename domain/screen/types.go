package screen

import (
	"fmt"
	"strings"
)

// Label is the categorical classification of a screen record
type Label string

const (
	Enriched       Label = "Enriched"
	Depleted       Label = "Depleted"
	NotSignificant Label = "Not significant"
	Control        Label = "NTC"
	Amalgam        Label = "Amalgam"
)

// Labels lists every label in legend order
var Labels = []Label{Enriched, Depleted, NotSignificant, Control, Amalgam}

// Method selects how the threshold metric is compared against thresholds
type Method string

const (
	MethodRRA        Method = "rra"
	MethodIncProduct Method = "inc-product"
	MethodIncPValue  Method = "inc-pvalue"
)

// ParseMethod accepts rra, inc-product and inc-pvalue
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodRRA, MethodIncProduct, MethodIncPValue:
		return m, nil
	default:
		return "", fmt.Errorf("the method must be one of 'rra', 'inc-pvalue', or 'inc-product', got %q", s)
	}
}

// TwoSided reports whether the method compares against a low/high threshold pair
func (m Method) TwoSided() bool {
	return m == MethodIncProduct || m == MethodIncPValue
}

// MarkerSize is the plotted point size used to emphasise significant records
type MarkerSize int

const (
	Small MarkerSize = 5
	Large MarkerSize = 10
)

// Thresholds configures significance. Single mode uses Threshold; two-sided
// mode needs Low, High and a two-sided Method.
type Thresholds struct {
	Threshold *float64
	Low       *float64
	High      *float64
	Method    Method
}

// Single returns single-threshold settings
func Single(threshold float64) Thresholds {
	return Thresholds{Threshold: &threshold, Method: MethodRRA}
}

// TwoSided returns low/high settings for inc-product or inc-pvalue
func TwoSided(low, high float64, method Method) Thresholds {
	return Thresholds{Low: &low, High: &high, Method: method}
}

func (t Thresholds) dual() bool {
	return t.Low != nil && t.High != nil && t.Method.TwoSided()
}

// Record is one row of a gene-level or sgRNA-level result table together
// with the columns derived from it.
type Record struct {
	Identifier      string
	Gene            string
	FoldChange      float64
	PValue          float64
	ThresholdMetric float64
	BaseMean        float64

	LogSignificance float64
	IsSignificant   bool
	Classification  Label
	Size            MarkerSize
}
