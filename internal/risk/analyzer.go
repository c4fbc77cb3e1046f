package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskwatch/internal/domain"
	"github.com/aristath/riskwatch/internal/risk/calculators"
)

// insufficientDataLabel is the single factor label of the fully neutral
// result returned when no asset has any data.
const insufficientDataLabel = "insufficient market data"

// SeriesSource supplies cached historical series for an asset
type SeriesSource interface {
	GetOrFetch(ctx context.Context, asset string, lookbackDays int) (domain.AssetSeries, error)
}

// Config holds analyzer tunables, validated by the configuration layer
// before construction.
type Config struct {
	Weights                 domain.RiskWeights
	VolatilityLookbackDays  int
	TrendLookbackDays       int
	VolumeLookbackDays      int
	CorrelationLookbackDays int
	StressLookbackDays      int
	VolatilityAlertScore    float64
	MaxConcurrentFetches    int
}

// DefaultConfig returns the standard analyzer tuning
func DefaultConfig() Config {
	return Config{
		Weights:                 domain.DefaultRiskWeights(),
		VolatilityLookbackDays:  30,
		TrendLookbackDays:       14,
		VolumeLookbackDays:      7,
		CorrelationLookbackDays: 30,
		StressLookbackDays:      30,
		VolatilityAlertScore:    70,
		MaxConcurrentFetches:    4,
	}
}

// Analyzer is the risk engine's public entry point. It fetches series for a
// basket concurrently, runs the five factor calculators and aggregates them
// into a RiskMetrics. Data-quality failures degrade to neutral fallback
// scores; for a non-empty basket the analyzer never fails.
type Analyzer struct {
	source   SeriesSource
	weights  domain.RiskWeights
	maxFetch int
	lookback int

	volatility  *calculators.Volatility
	trend       *calculators.Trend
	volume      *calculators.Volume
	correlation *calculators.Correlation
	stress      *calculators.MarketStress

	log zerolog.Logger
	now func() time.Time
}

// New creates an analyzer over the given series source
func New(source SeriesSource, cfg Config, log zerolog.Logger) *Analyzer {
	lookback := cfg.VolatilityLookbackDays
	for _, d := range []int{cfg.TrendLookbackDays, cfg.VolumeLookbackDays, cfg.CorrelationLookbackDays, cfg.StressLookbackDays} {
		if d > lookback {
			lookback = d
		}
	}

	return &Analyzer{
		source:      source,
		weights:     cfg.Weights,
		maxFetch:    cfg.MaxConcurrentFetches,
		lookback:    lookback + 1, // one extra close to compute the oldest return
		volatility:  calculators.NewVolatility(cfg.VolatilityLookbackDays, cfg.VolatilityAlertScore),
		trend:       calculators.NewTrend(cfg.TrendLookbackDays),
		volume:      calculators.NewVolume(cfg.VolumeLookbackDays),
		correlation: calculators.NewCorrelation(cfg.CorrelationLookbackDays),
		stress:      calculators.NewMarketStress(cfg.StressLookbackDays),
		log:         log.With().Str("component", "risk_analyzer").Logger(),
		now:         time.Now,
	}
}

// CalculateRiskScore assesses the basket and returns its composite risk.
// The only error condition is an empty basket; every data failure is
// absorbed into fallback scoring so a monitoring loop built on top never
// stalls on data quality.
func (a *Analyzer) CalculateRiskScore(ctx context.Context, assets []string) (domain.RiskMetrics, error) {
	if len(assets) == 0 {
		return domain.RiskMetrics{}, fmt.Errorf("at least one asset is required")
	}

	basket := a.fetchBasket(ctx, assets)
	if len(basket) == 0 {
		a.log.Warn().
			Strs("assets", assets).
			Msg("No market data available for any asset, returning neutral assessment")
		return a.neutralMetrics(), nil
	}

	results := a.runCalculators(basket)
	metrics := Aggregate(a.weights, results, a.now())

	a.log.Info().
		Strs("assets", assets).
		Float64("composite", metrics.CompositeRiskScore).
		Str("level", string(metrics.RiskLevel)).
		Strs("factors", metrics.RiskFactors).
		Msg("Risk assessment complete")

	return metrics, nil
}

// fetchBasket loads every asset's series concurrently, bounded by the
// provider rate limit. Unavailable assets are dropped with a warning.
func (a *Analyzer) fetchBasket(ctx context.Context, assets []string) []domain.AssetSeries {
	series := make([]domain.AssetSeries, len(assets))
	fetched := make([]bool, len(assets))

	sem := make(chan struct{}, a.maxFetch)
	var wg sync.WaitGroup

	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			s, err := a.source.GetOrFetch(ctx, asset, a.lookback)
			if err != nil {
				a.log.Warn().Err(err).Str("asset", asset).Msg("Series unavailable")
				return
			}
			series[i] = s
			fetched[i] = true
		}(i, asset)
	}
	wg.Wait()

	basket := make([]domain.AssetSeries, 0, len(assets))
	for i := range series {
		if fetched[i] {
			basket = append(basket, series[i])
		}
	}
	return basket
}

// runCalculators executes the five factor calculators concurrently over the
// same read-only snapshot. Calculators share no mutable state.
func (a *Analyzer) runCalculators(basket []domain.AssetSeries) FactorResults {
	var results FactorResults
	var wg sync.WaitGroup

	run := func(dst *calculators.Result, name string, calc func([]domain.AssetSeries) calculators.Result) {
		defer wg.Done()
		*dst = calc(basket)
		if dst.Fallback {
			a.log.Warn().Str("factor", name).Str("reason", dst.Reason).Msg("Factor fell back to neutral score")
		}
	}

	wg.Add(5)
	go run(&results.Volatility, "volatility", a.volatility.Calculate)
	go run(&results.Trend, "trend", a.trend.Calculate)
	go run(&results.Volume, "volume", a.volume.Calculate)
	go run(&results.Correlation, "correlation", a.correlation.Calculate)
	go run(&results.MarketStress, "market_stress", a.stress.Calculate)
	wg.Wait()

	return results
}

// neutralMetrics is the total-failure result: every score at the midpoint,
// medium risk, one explanatory factor.
func (a *Analyzer) neutralMetrics() domain.RiskMetrics {
	return domain.RiskMetrics{
		VolatilityScore:    calculators.FallbackScore,
		TrendScore:         calculators.FallbackScore,
		VolumeScore:        calculators.FallbackScore,
		CorrelationScore:   calculators.FallbackScore,
		MarketStressScore:  calculators.FallbackScore,
		CompositeRiskScore: calculators.FallbackScore,
		RiskLevel:          domain.RiskLevelMedium,
		RiskFactors:        []string{insufficientDataLabel},
		CalculatedAt:       a.now(),
	}
}
