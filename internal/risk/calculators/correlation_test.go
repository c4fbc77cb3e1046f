package calculators

import (
	"math"
	"testing"

	"github.com/aristath/riskwatch/internal/domain"
)

func TestCorrelationNeedsTwoAssets(t *testing.T) {
	calc := NewCorrelation(30)

	result := calc.Calculate([]domain.AssetSeries{
		seriesFromCloses("ETH", linearCloses(100, 1, 31)),
	})

	if !result.Fallback || result.Score != FallbackScore {
		t.Fatalf("result = %+v, want fallback at %v", result, FallbackScore)
	}
	if len(result.Labels) != 1 || result.Labels[0] != "insufficient data for correlation analysis" {
		t.Errorf("labels = %v, want the insufficient-data label", result.Labels)
	}
}

func TestCorrelationFallbackOnShortOverlap(t *testing.T) {
	calc := NewCorrelation(30)

	result := calc.Calculate([]domain.AssetSeries{
		seriesFromCloses("ETH", []float64{100, 101}),
		seriesFromCloses("LINK", []float64{15, 16}),
	})

	if !result.Fallback {
		t.Fatal("expected fallback for a single overlapping return")
	}
	if len(result.Labels) != 1 {
		t.Errorf("labels = %v, want the insufficient-data label", result.Labels)
	}
}

func TestScoreCorrelationBands(t *testing.T) {
	tests := []struct {
		r    float64
		want float64
	}{
		{r: 0.75, want: 20},
		{r: 0.700001, want: 20},
		{r: 0.70, want: 40},
		{r: 0.699999, want: 40},
		{r: 0.6, want: 40},
		{r: 0.500001, want: 40},
		{r: 0.50, want: 70},
		{r: 0.4, want: 70},
		{r: 0.300001, want: 70},
		{r: 0.30, want: 90},
		{r: 0.1, want: 90},
		{r: -0.4, want: 90},
	}

	for _, tt := range tests {
		if got := scoreCorrelation(tt.r); got != tt.want {
			t.Errorf("scoreCorrelation(%v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestCorrelationCoMovingBasketScoresLow(t *testing.T) {
	calc := NewCorrelation(30)

	closes := alternatingCloses(100, 0.02, 31)
	scaled := make([]float64, len(closes))
	for i, c := range closes {
		scaled[i] = c * 5
	}

	// Identical return streams: correlation exactly 1
	result := calc.Calculate([]domain.AssetSeries{
		seriesFromCloses("ETH", closes),
		seriesFromCloses("LINK", scaled),
	})

	if result.Fallback {
		t.Fatal("expected a computed score")
	}
	if math.Abs(result.Score-20) > 1e-9 {
		t.Errorf("score = %v, want 20 for a highly correlated basket", result.Score)
	}
}

func TestCorrelationFragmentedBasketScoresHigh(t *testing.T) {
	calc := NewCorrelation(30)

	// Opposite-phase oscillations: strongly negative correlation
	up := decayingCloses(100, [2]float64{0.75, 0.95}, 31)
	down := decayingCloses(100, [2]float64{0.95, 0.75}, 31)

	result := calc.Calculate([]domain.AssetSeries{
		seriesFromCloses("ETH", up),
		seriesFromCloses("LINK", down),
	})

	if math.Abs(result.Score-90) > 1e-9 {
		t.Errorf("score = %v, want 90 for a decorrelated basket", result.Score)
	}
}
