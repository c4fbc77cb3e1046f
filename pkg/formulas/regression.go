package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TrendFit holds the result of an ordinary least-squares fit of a value
// series against its time index.
type TrendFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// LinearTrend fits values against their index (0, 1, 2, ...) with OLS and
// reports slope, intercept and R-squared. Needs at least 3 points.
// For a constant series R-squared is reported as 0 (no explainable variance).
func LinearTrend(values []float64) (TrendFit, bool) {
	if len(values) < 3 {
		return TrendFit{}, false
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, values, nil, false)
	r2 := stat.RSquared(xs, values, nil, intercept, slope)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}

	return TrendFit{Slope: slope, Intercept: intercept, RSquared: r2}, true
}
