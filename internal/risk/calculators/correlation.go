package calculators

import (
	"math"
	"sort"

	"github.com/aristath/riskwatch/internal/domain"
	"github.com/aristath/riskwatch/pkg/formulas"
)

// insufficientCorrelationLabel is surfaced to the caller when the basket
// cannot support correlation analysis.
const insufficientCorrelationLabel = "insufficient data for correlation analysis"

// Correlation scores the basket by the mean Pearson correlation of daily
// returns across all asset pairs. Highly correlated baskets are treated as
// lower risk here: the signal reads decorrelation as market fragmentation.
type Correlation struct {
	LookbackDays int
}

// NewCorrelation creates a correlation calculator
func NewCorrelation(lookbackDays int) *Correlation {
	return &Correlation{LookbackDays: lookbackDays}
}

// Calculate reduces the basket to the mean of pairwise return correlations
// (pairs iterated in sorted-asset order, so the reduction is deterministic)
// and maps it onto four risk bands. Needs at least two assets with at least
// two overlapping return points each.
func (c *Correlation) Calculate(basket []domain.AssetSeries) Result {
	if len(basket) < 2 {
		return FallbackLabeled("fewer than 2 assets in basket", insufficientCorrelationLabel)
	}

	sorted := make([]domain.AssetSeries, len(basket))
	copy(sorted, basket)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Asset < sorted[j].Asset })

	var correlations []float64
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			r, ok := c.pairCorrelation(sorted[i], sorted[j])
			if ok {
				correlations = append(correlations, r)
			}
		}
	}

	if len(correlations) == 0 {
		return FallbackLabeled("no asset pair has enough overlapping returns", insufficientCorrelationLabel)
	}

	return Computed(scoreCorrelation(formulas.Mean(correlations)))
}

// pairCorrelation computes the Pearson correlation of two assets' daily
// returns over the overlapping tail of both series.
func (c *Correlation) pairCorrelation(a, b domain.AssetSeries) (float64, bool) {
	ra := formulas.CalculateReturns(a.Tail(c.LookbackDays + 1).Closes())
	rb := formulas.CalculateReturns(b.Tail(c.LookbackDays + 1).Closes())

	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	if n < 2 {
		return 0, false
	}

	r := formulas.Correlation(ra[len(ra)-n:], rb[len(rb)-n:])
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

// scoreCorrelation maps a representative correlation onto risk bands.
// Strong co-movement scores low; weak or negative correlation scores high.
func scoreCorrelation(r float64) float64 {
	switch {
	case r > 0.7:
		return 20
	case r > 0.5:
		return 40
	case r > 0.3:
		return 70
	default:
		return 90
	}
}
