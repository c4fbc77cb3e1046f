package risk

import (
	"time"

	"github.com/aristath/riskwatch/internal/domain"
	"github.com/aristath/riskwatch/internal/risk/calculators"
)

// FactorResults bundles the five calculator outcomes in evaluation order
type FactorResults struct {
	Volatility   calculators.Result
	Trend        calculators.Result
	Volume       calculators.Result
	Correlation  calculators.Result
	MarketStress calculators.Result
}

// RiskLevelFor maps a composite score onto the fixed risk bands
func RiskLevelFor(score float64) domain.RiskLevel {
	switch {
	case score < 40:
		return domain.RiskLevelLow
	case score < 60:
		return domain.RiskLevelMedium
	case score < 80:
		return domain.RiskLevelHigh
	default:
		return domain.RiskLevelCritical
	}
}

// Aggregate combines the five factor scores into a composite RiskMetrics.
// The composite is the weighted sum of sub-scores; risk factors are the
// union of calculator labels in evaluation order
// (volatility, trend, volume, correlation, market stress), deduplicated.
func Aggregate(weights domain.RiskWeights, results FactorResults, now time.Time) domain.RiskMetrics {
	composite := weights.Volatility*results.Volatility.Score +
		weights.Trend*results.Trend.Score +
		weights.Volume*results.Volume.Score +
		weights.Correlation*results.Correlation.Score +
		weights.MarketStress*results.MarketStress.Score

	var factors []string
	seen := make(map[string]bool)
	for _, result := range []calculators.Result{
		results.Volatility,
		results.Trend,
		results.Volume,
		results.Correlation,
		results.MarketStress,
	} {
		for _, label := range result.Labels {
			if !seen[label] {
				seen[label] = true
				factors = append(factors, label)
			}
		}
	}

	return domain.RiskMetrics{
		VolatilityScore:    results.Volatility.Score,
		TrendScore:         results.Trend.Score,
		VolumeScore:        results.Volume.Score,
		CorrelationScore:   results.Correlation.Score,
		MarketStressScore:  results.MarketStress.Score,
		CompositeRiskScore: composite,
		RiskLevel:          RiskLevelFor(composite),
		RiskFactors:        factors,
		CalculatedAt:       now,
	}
}
