package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// SampleProfile summarises the count distribution of one sample
type SampleProfile struct {
	Sample       string  `json:"sample"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Outliers     int     `json:"outliers"`
	ZeroFraction float64 `json:"zero_fraction"`
	Gini         float64 `json:"gini"`
}

// DistributionAnalyzer handles per-sample count distribution analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeSample profiles one sample column. NaN cells are dropped first.
func (da *DistributionAnalyzer) AnalyzeSample(sample string, data []float64) (SampleProfile, error) {
	profile := SampleProfile{Sample: sample}
	data = finite(data)

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return profile, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return profile, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return profile, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return profile, err
	}

	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return profile, err
	}

	zeros := 0
	for _, x := range data {
		if x == 0 {
			zeros++
		}
	}

	profile.Mean = mean
	profile.StdDev = stdDev
	profile.Min = min
	profile.Max = max
	profile.Median = median
	profile.Q25 = q25
	profile.Q75 = q75
	profile.Skewness = calculateSkewness(data, mean, stdDev)
	profile.Outliers = detectOutliers(data, q25, q75)
	profile.ZeroFraction = float64(zeros) / float64(len(data))
	profile.Gini = giniIndex(data)

	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}

// giniIndex measures read-count inequality across guides. 0 is perfectly even;
// values near 1 mean a few guides hold most reads. Negative counts count as zero.
func giniIndex(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	for i, x := range data {
		sorted[i] = math.Max(x, 0)
	}
	sort.Float64s(sorted)

	var cum, weighted float64
	for i, x := range sorted {
		cum += x
		weighted += float64(i+1) * x
	}
	if cum == 0 {
		return 0
	}
	fn := float64(n)
	return (2*weighted)/(fn*cum) - (fn+1)/fn
}

func finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, x := range data {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}
