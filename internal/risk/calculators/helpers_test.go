package calculators

import (
	"time"

	"github.com/aristath/riskwatch/internal/domain"
)

// seriesFromCloses builds a daily series with flat volume and each day
// opening at the previous close (no overnight gaps).
func seriesFromCloses(asset string, closes []float64) domain.AssetSeries {
	volumes := make([]float64, len(closes))
	for i := range volumes {
		volumes[i] = 1000
	}
	return buildSeries(asset, closes, volumes)
}

func buildSeries(asset string, closes, volumes []float64) domain.AssetSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		points[i] = domain.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   open,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: volumes[i],
		}
	}

	return domain.AssetSeries{Asset: asset, Points: points}
}

// alternatingCloses builds n closes oscillating between base and
// base*(1+step), producing a flat series with known return volatility.
func alternatingCloses(base, step float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base
		if i%2 == 1 {
			closes[i] = base * (1 + step)
		}
	}
	return closes
}

// decayingCloses builds n closes multiplied alternately by the two factors,
// producing a steady decline with known oscillation.
func decayingCloses(start float64, factors [2]float64, n int) []float64 {
	closes := make([]float64, n)
	closes[0] = start
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * factors[(i-1)%2]
	}
	return closes
}

func flatVolumes(value float64, n int) []float64 {
	volumes := make([]float64, n)
	for i := range volumes {
		volumes[i] = value
	}
	return volumes
}
