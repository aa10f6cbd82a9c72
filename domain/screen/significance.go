package screen

import (
	"fmt"
	"math"
	"strings"

	"screenviz/internal/errors"
)

// Validate fails when the settings select neither mode. A threshold pair with
// a single-threshold method only counts when Threshold is also set.
func (t Thresholds) Validate() error {
	if t.dual() || t.Threshold != nil {
		return nil
	}
	if t.Low != nil || t.High != nil {
		if !t.Method.TwoSided() {
			return errors.ThresholdConfig(fmt.Sprintf("threshold_low/threshold_high require method inc-product or inc-pvalue, got %q", t.Method))
		}
		return errors.ThresholdConfig("both threshold_low and threshold_high must be provided")
	}
	return errors.ThresholdConfig("must provide a threshold value")
}

// ClassifySignificance decides whether a threshold metric is significant.
//
// Two-sided settings take precedence: inc-product is significant outside
// [Low, High]; inc-pvalue compares against Low for negative fold changes and
// against High otherwise. Single mode is significant below Threshold.
func ClassifySignificance(metric float64, t Thresholds, foldChange float64) (bool, error) {
	if t.dual() {
		switch t.Method {
		case MethodIncProduct:
			return metric < *t.Low || metric > *t.High, nil
		case MethodIncPValue:
			if foldChange < 0 {
				return metric < *t.Low, nil
			}
			return metric < *t.High, nil
		}
	}
	if t.Threshold != nil {
		return metric < *t.Threshold, nil
	}
	return false, t.Validate()
}

// ClassifyDirection labels a record. The control token wins over
// significance; a significant record with a fold change of exactly zero is
// NotSignificant.
func ClassifyDirection(foldChange float64, significant bool, identifier, controlToken string) Label {
	switch {
	case controlToken != "" && strings.Contains(identifier, controlToken):
		return Control
	case significant && foldChange > 0:
		return Enriched
	case significant && foldChange < 0:
		return Depleted
	default:
		return NotSignificant
	}
}

// ClassifyAmalgam relabels identifiers carrying the amalgam token. Control
// labels are left alone.
func ClassifyAmalgam(identifier, amalgamToken string, base Label) Label {
	if base == Control || amalgamToken == "" {
		return base
	}
	if strings.Contains(identifier, amalgamToken) {
		return Amalgam
	}
	return base
}

// SizeFor maps significance to a marker size
func SizeFor(significant bool) MarkerSize {
	if significant {
		return Large
	}
	return Small
}

// LogSignificance returns -log10(p). p == 0 gives +Inf.
func LogSignificance(p float64) float64 {
	return -math.Log10(p)
}

// Clamp caps v at ceiling. +Inf clamps to ceiling; NaN stays NaN.
func Clamp(v, ceiling float64) float64 {
	if v > ceiling {
		return ceiling
	}
	return v
}

// Magnitude is |foldChange| floored at floor, used for dashboard marker sizes
func Magnitude(foldChange, floor float64) float64 {
	return math.Max(math.Abs(foldChange), floor)
}
