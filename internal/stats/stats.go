// Package stats provides the primitive time-series statistics used by the
// analyzers: mean, population standard deviation, and least-squares fits.
package stats

import "math"

// Point is a single (x, y) observation for regression.
type Point struct {
	X float64
	Y float64
}

// Regression is a fitted line y = Slope*x + Intercept.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the fitted line at x.
func (r Regression) At(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// Mean returns the arithmetic mean of values. An empty slice yields 0;
// pipelines that need to distinguish "no data" gate on length before calling.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StandardDeviation returns the population standard deviation of values
// around the supplied mean. Fewer than two values yield 0.
func StandardDeviation(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// MeanStdDev returns the mean and population standard deviation of values.
func MeanStdDev(values []float64) (mean, stddev float64) {
	mean = Mean(values)
	return mean, StandardDeviation(values, mean)
}

// LinearRegression fits an ordinary least-squares line through points.
// When every x is identical the slope is undefined; the fit falls back to a
// flat line through mean(y). An empty input yields the zero Regression.
func LinearRegression(points []Point) Regression {
	n := float64(len(points))
	if n == 0 {
		return Regression{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumXX += p.X * p.X
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return Regression{Slope: 0, Intercept: sumY / n}
	}

	slope := (n*sumXY - sumX*sumY) / denominator
	return Regression{
		Slope:     slope,
		Intercept: (sumY - slope*sumX) / n,
	}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
