package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sentinel errors for data-quality failures. Calculators recover from both
// with a neutral fallback score; neither is ever surfaced to the caller of
// the risk analyzer.
var (
	// ErrDataUnavailable means neither the provider nor the cache can supply a series
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrInsufficientHistory means a series exists but is too short to compute on
	ErrInsufficientHistory = errors.New("insufficient price history")
)

// PricePoint represents a single daily OHLCV observation
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// AssetSeries is an ordered (oldest first) daily price history for one asset.
// Calculators receive it as a read-only snapshot and must not mutate Points.
type AssetSeries struct {
	Asset  string       `json:"asset"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations in the series
func (s AssetSeries) Len() int {
	return len(s.Points)
}

// Closes returns the closing prices, oldest first
func (s AssetSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Volumes returns the daily volumes, oldest first
func (s AssetSeries) Volumes() []float64 {
	volumes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		volumes[i] = p.Volume
	}
	return volumes
}

// Tail returns the last n observations (the whole series if shorter)
func (s AssetSeries) Tail(n int) AssetSeries {
	if n >= len(s.Points) {
		return s
	}
	return AssetSeries{Asset: s.Asset, Points: s.Points[len(s.Points)-n:]}
}

// RiskLevel is the discrete classification of a composite risk score
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"      // composite [0, 40)
	RiskLevelMedium   RiskLevel = "medium"   // composite [40, 60)
	RiskLevelHigh     RiskLevel = "high"     // composite [60, 80)
	RiskLevelCritical RiskLevel = "critical" // composite [80, 100]
)

// RiskMetrics is the immutable result of one risk assessment. All scores are
// in [0, 100]; RiskFactors preserves calculator evaluation order with
// duplicates removed.
type RiskMetrics struct {
	VolatilityScore    float64   `json:"volatility_score"`
	TrendScore         float64   `json:"trend_score"`
	VolumeScore        float64   `json:"volume_score"`
	CorrelationScore   float64   `json:"correlation_score"`
	MarketStressScore  float64   `json:"market_stress_score"`
	CompositeRiskScore float64   `json:"composite_risk_score"`
	RiskLevel          RiskLevel `json:"risk_level"`
	RiskFactors        []string  `json:"risk_factors"`
	CalculatedAt       time.Time `json:"calculated_at"`
}

// RiskWeights maps each risk factor to its share of the composite score.
// Weights must be non-negative and sum to 1.0.
type RiskWeights struct {
	Volatility   float64 `json:"volatility"`
	Trend        float64 `json:"trend"`
	Volume       float64 `json:"volume"`
	Correlation  float64 `json:"correlation"`
	MarketStress float64 `json:"market_stress"`
}

// DefaultRiskWeights returns the standard factor weighting
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		Volatility:   0.25,
		Trend:        0.20,
		Volume:       0.15,
		Correlation:  0.20,
		MarketStress: 0.20,
	}
}

const weightSumTolerance = 1e-6

// Validate checks that all weights are non-negative and sum to 1.0.
// Called once at configuration load, never per assessment.
func (w RiskWeights) Validate() error {
	named := map[string]float64{
		"volatility":    w.Volatility,
		"trend":         w.Trend,
		"volume":        w.Volume,
		"correlation":   w.Correlation,
		"market_stress": w.MarketStress,
	}
	for name, weight := range named {
		if weight < 0 {
			return fmt.Errorf("risk weight %s must be non-negative, got %f", name, weight)
		}
	}

	sum := w.Volatility + w.Trend + w.Volume + w.Correlation + w.MarketStress
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("risk weights must sum to 1.0, got %f", sum)
	}

	return nil
}
