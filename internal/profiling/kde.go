package profiling

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultBandwidth is the bandwidth factor applied to the sample standard deviation
	DefaultBandwidth = 0.05
	// DefaultGridPoints is the number of evaluation points between min and max
	DefaultGridPoints = 1000
)

// Density is a kernel density estimate evaluated on a grid
type Density struct {
	Sample string    `json:"sample"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
}

// GaussianKDE estimates the density of data with a Gaussian kernel whose
// width is bandwidth times the sample standard deviation, evaluated at
// points evenly spaced between the minimum and maximum.
func GaussianKDE(sample string, data []float64, bandwidth float64, points int) (Density, error) {
	data = finite(data)
	if len(data) < 2 {
		return Density{}, fmt.Errorf("kde for %s needs at least two values", sample)
	}
	if points < 2 {
		points = DefaultGridPoints
	}

	sigma := bandwidth * stat.StdDev(data, nil)
	if sigma <= 0 {
		return Density{}, fmt.Errorf("kde for %s: values are constant", sample)
	}

	grid := make([]float64, points)
	floats.Span(grid, floats.Min(data), floats.Max(data))

	kernel := distuv.Normal{Mu: 0, Sigma: sigma}
	n := float64(len(data))
	density := make([]float64, points)
	for i, x := range grid {
		var sum float64
		for _, d := range data {
			sum += kernel.Prob(x - d)
		}
		density[i] = sum / n
	}
	return Density{Sample: sample, X: grid, Y: density}, nil
}
