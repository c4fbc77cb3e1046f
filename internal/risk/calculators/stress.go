package calculators

import (
	"fmt"
	"math"

	"github.com/aristath/riskwatch/internal/domain"
	"github.com/aristath/riskwatch/pkg/formulas"
)

const (
	gapThreshold        = 0.05
	gapPenalty          = 8.0
	gapPenaltyCap       = 24.0
	concentrationRatio  = 3.0
	concentrationFine   = 15.0
	momentumThreshold   = 0.10
	momentumPeriodDays  = 3
	momentumFine        = 15.0
	stressBaselineScore = 50.0
)

// MarketStress scores the basket by three independent stress indicators:
// overnight gaps, single-day volume concentration and sharp short-term
// momentum in either direction.
type MarketStress struct {
	LookbackDays int
}

// NewMarketStress creates a market stress calculator
func NewMarketStress(lookbackDays int) *MarketStress {
	return &MarketStress{LookbackDays: lookbackDays}
}

// Calculate applies additive penalties to a base score of 50. Gap events
// accumulate across the basket up to a cap; concentration and momentum are
// flat penalties triggered by any asset.
func (c *MarketStress) Calculate(basket []domain.AssetSeries) Result {
	gaps := 0
	concentrated := false
	sharpMove := false
	usable := false

	for _, series := range basket {
		window := series.Tail(c.LookbackDays + 1)
		if window.Len() < 2 {
			continue
		}
		usable = true

		gaps += countGaps(window.Points)
		if hasVolumeConcentration(window.Volumes()) {
			concentrated = true
		}
		if hasSharpMomentum(window.Closes()) {
			sharpMove = true
		}
	}

	if !usable {
		return Fallback("fewer than 2 observations available for stress analysis")
	}

	score := stressBaselineScore + math.Min(gapPenaltyCap, float64(gaps)*gapPenalty)
	var labels []string

	if gaps > 0 {
		labels = append(labels, fmt.Sprintf("%d significant overnight gaps detected", gaps))
	}
	if concentrated {
		score += concentrationFine
		labels = append(labels, "volume concentration detected")
	}
	if sharpMove {
		score += momentumFine
		labels = append(labels, "sharp short-term momentum detected")
	}

	return Computed(score, labels...)
}

// countGaps counts overnight gaps above 5% of the prior close
func countGaps(points []domain.PricePoint) int {
	count := 0
	for i := 1; i < len(points); i++ {
		prevClose := points[i-1].Close
		if prevClose <= 0 {
			continue
		}
		gap := math.Abs(points[i].Open-prevClose) / prevClose
		if gap > gapThreshold {
			count++
		}
	}
	return count
}

// hasVolumeConcentration reports whether any single day's volume exceeds
// three times the window average.
func hasVolumeConcentration(volumes []float64) bool {
	mean := formulas.Mean(volumes)
	if mean <= 0 {
		return false
	}
	for _, v := range volumes {
		if v > concentrationRatio*mean {
			return true
		}
	}
	return false
}

// hasSharpMomentum reports whether the most recent 3-day cumulative return
// exceeds 10% in magnitude. Rallies and crashes both count as stress.
func hasSharpMomentum(closes []float64) bool {
	roc := formulas.RateOfChange(closes, momentumPeriodDays)
	if len(roc) == 0 {
		return false
	}
	return math.Abs(roc[len(roc)-1]) > momentumThreshold
}
