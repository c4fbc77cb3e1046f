package calculators

import (
	"math"

	"github.com/aristath/riskwatch/internal/domain"
	"github.com/aristath/riskwatch/pkg/formulas"
)

const (
	weakTrendRSquared   = 0.3
	strongTrendRSquared = 0.7

	// a fitted move of 10% or more over the window counts as full slope
	// magnitude in the moderate band
	fullMagnitudeMove = 0.10
)

// Trend scores the basket by the direction and strength of a linear
// regression over recent closes. Strong downtrends score high, strong
// uptrends score low, weak trends are ambiguous.
type Trend struct {
	LookbackDays int
}

// NewTrend creates a trend calculator
func NewTrend(lookbackDays int) *Trend {
	return &Trend{LookbackDays: lookbackDays}
}

// Calculate computes the basket trend score as the mean of per-asset
// scores. Assets with fewer than 3 closes are skipped; if no asset
// qualifies the result is the neutral fallback.
func (c *Trend) Calculate(basket []domain.AssetSeries) Result {
	var scores []float64
	strongDowntrend := false

	for _, series := range basket {
		closes := series.Tail(c.LookbackDays).Closes()
		fit, ok := formulas.LinearTrend(closes)
		if !ok {
			continue
		}

		scores = append(scores, scoreTrend(fit, closes))
		if fit.Slope < 0 && fit.RSquared > strongTrendRSquared {
			strongDowntrend = true
		}
	}

	if len(scores) == 0 {
		return Fallback("fewer than 3 closes available to regress")
	}

	score := formulas.Mean(scores)
	if strongDowntrend {
		return Computed(score, "strong downward trend detected")
	}

	return Computed(score)
}

// scoreTrend maps a trend fit to a risk score. Rules are evaluated in
// priority order, first match wins:
//  1. weak fit (R² < 0.3): 60, no clear trend is ambiguous risk
//  2. strong downtrend: 80..100 scaled by R²
//  3. strong uptrend: 20..0 scaled by R²
//  4. moderate trend: 30..60, centered on 45, pushed by R², direction and
//     the magnitude of the fitted move over the window
func scoreTrend(fit formulas.TrendFit, closes []float64) float64 {
	r2 := fit.RSquared

	switch {
	case r2 < weakTrendRSquared:
		return 60
	case fit.Slope < 0 && r2 > strongTrendRSquared:
		return 80 + (r2-strongTrendRSquared)/(1-strongTrendRSquared)*20
	case fit.Slope > 0 && r2 > strongTrendRSquared:
		return 20 - (r2-strongTrendRSquared)/(1-strongTrendRSquared)*20
	default:
		strength := (r2 - weakTrendRSquared) / (strongTrendRSquared - weakTrendRSquared)
		offset := strength * 15 * slopeMagnitude(fit, closes)
		if fit.Slope < 0 {
			return 45 + offset
		}
		return 45 - offset
	}
}

// slopeMagnitude normalizes the fitted move over the window against the
// mean price, saturating at fullMagnitudeMove.
func slopeMagnitude(fit formulas.TrendFit, closes []float64) float64 {
	mean := formulas.Mean(closes)
	if mean == 0 {
		return 1
	}

	move := math.Abs(fit.Slope) * float64(len(closes)-1) / math.Abs(mean)
	if move >= fullMagnitudeMove {
		return 1
	}
	return move / fullMagnitudeMove
}
