package calculators

import (
	"fmt"

	"github.com/aristath/riskwatch/internal/domain"
	"github.com/aristath/riskwatch/pkg/formulas"
)

// maxAnnualizedVolatility is the annualized volatility mapped to score 100.
// 50% a year is treated as maximum volatility risk.
const maxAnnualizedVolatility = 0.50

// Volatility scores the basket by annualized volatility of daily returns.
// 0% annualized maps to 0, 50%+ maps to 100, linear in between.
type Volatility struct {
	LookbackDays int
	AlertScore   float64 // score above which a factor label is emitted
}

// NewVolatility creates a volatility calculator
func NewVolatility(lookbackDays int, alertScore float64) *Volatility {
	return &Volatility{LookbackDays: lookbackDays, AlertScore: alertScore}
}

// Calculate computes the basket volatility score as the mean of per-asset
// scores. Assets with fewer than 2 daily returns are skipped; if no asset
// qualifies the result is the neutral fallback with no label.
func (c *Volatility) Calculate(basket []domain.AssetSeries) Result {
	var scores, vols []float64

	for _, series := range basket {
		closes := series.Tail(c.LookbackDays + 1).Closes()
		returns := formulas.CalculateReturns(closes)
		if len(returns) < 2 {
			continue
		}

		annVol := formulas.AnnualizedVolatility(returns)
		scores = append(scores, clampScore(annVol/maxAnnualizedVolatility*100))
		vols = append(vols, annVol)
	}

	if len(scores) == 0 {
		return Fallback("fewer than 2 daily returns available")
	}

	score := formulas.Mean(scores)
	if score > c.AlertScore {
		label := fmt.Sprintf("high volatility detected (%.1f%% annualized)", formulas.Mean(vols)*100)
		return Computed(score, label)
	}

	return Computed(score)
}
