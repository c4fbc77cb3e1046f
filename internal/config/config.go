package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/riskwatch/internal/domain"
)

// Config holds application configuration. Loaded once at startup and
// read-only afterwards.
type Config struct {
	Port         int
	LogLevel     string
	DevMode      bool
	DatabasePath string

	// Default basket assessed by the monitoring loop
	Assets []string

	// Series cache / provider
	CacheTTL             time.Duration
	MonitorInterval      time.Duration
	MaxConcurrentFetches int

	// Per-factor lookback windows (days)
	VolatilityLookbackDays  int
	TrendLookbackDays       int
	VolumeLookbackDays      int
	CorrelationLookbackDays int
	StressLookbackDays      int

	// Thresholds
	VolatilityAlertScore float64 // volatility score above which a factor label is emitted
	RiskAlertScore       float64 // composite score above which the monitor alerts

	Weights domain.RiskWeights
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	defaults := domain.DefaultRiskWeights()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8001),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/history.db"),

		Assets: splitList(getEnv("RISK_ASSETS", "ETH,USDC,LINK")),

		CacheTTL:             time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		MonitorInterval:      time.Duration(getEnvAsInt("MONITOR_INTERVAL_SECONDS", 900)) * time.Second,
		MaxConcurrentFetches: getEnvAsInt("MAX_CONCURRENT_FETCHES", 4),

		VolatilityLookbackDays:  getEnvAsInt("VOLATILITY_LOOKBACK_DAYS", 30),
		TrendLookbackDays:       getEnvAsInt("TREND_LOOKBACK_DAYS", 14),
		VolumeLookbackDays:      getEnvAsInt("VOLUME_LOOKBACK_DAYS", 7),
		CorrelationLookbackDays: getEnvAsInt("CORRELATION_LOOKBACK_DAYS", 30),
		StressLookbackDays:      getEnvAsInt("STRESS_LOOKBACK_DAYS", 30),

		VolatilityAlertScore: getEnvAsFloat("VOLATILITY_ALERT_SCORE", 70),
		RiskAlertScore:       getEnvAsFloat("RISK_ALERT_SCORE", 75),

		Weights: domain.RiskWeights{
			Volatility:   getEnvAsFloat("WEIGHT_VOLATILITY", defaults.Volatility),
			Trend:        getEnvAsFloat("WEIGHT_TREND", defaults.Trend),
			Volume:       getEnvAsFloat("WEIGHT_VOLUME", defaults.Volume),
			Correlation:  getEnvAsFloat("WEIGHT_CORRELATION", defaults.Correlation),
			MarketStress: getEnvAsFloat("WEIGHT_MARKET_STRESS", defaults.MarketStress),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants. Violations are configuration
// errors: fatal at startup, never re-checked at assessment time.
func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("PORT must be positive, got %d", c.Port)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("RISK_ASSETS must name at least one asset")
	}

	if err := c.Weights.Validate(); err != nil {
		return err
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL_SECONDS must be positive")
	}
	// A cache entry must not outlive one monitoring cycle, otherwise stale
	// data silently persists past the cycle it was fetched for.
	if c.CacheTTL >= c.MonitorInterval {
		return fmt.Errorf("cache TTL (%s) must be shorter than the monitoring interval (%s)",
			c.CacheTTL, c.MonitorInterval)
	}

	if c.MaxConcurrentFetches < 1 {
		return fmt.Errorf("MAX_CONCURRENT_FETCHES must be at least 1")
	}

	for name, days := range map[string]int{
		"VOLATILITY_LOOKBACK_DAYS":  c.VolatilityLookbackDays,
		"TREND_LOOKBACK_DAYS":       c.TrendLookbackDays,
		"VOLUME_LOOKBACK_DAYS":      c.VolumeLookbackDays,
		"CORRELATION_LOOKBACK_DAYS": c.CorrelationLookbackDays,
		"STRESS_LOOKBACK_DAYS":      c.StressLookbackDays,
	} {
		if days < 2 {
			return fmt.Errorf("%s must be at least 2, got %d", name, days)
		}
	}

	if c.VolatilityAlertScore < 0 || c.VolatilityAlertScore > 100 {
		return fmt.Errorf("VOLATILITY_ALERT_SCORE must be in [0,100], got %f", c.VolatilityAlertScore)
	}
	if c.RiskAlertScore < 0 || c.RiskAlertScore > 100 {
		return fmt.Errorf("RISK_ALERT_SCORE must be in [0,100], got %f", c.RiskAlertScore)
	}

	return nil
}

// MaxLookbackDays returns the longest configured lookback window. The
// analyzer fetches one series per asset sized to cover every calculator.
func (c *Config) MaxLookbackDays() int {
	max := c.VolatilityLookbackDays
	for _, d := range []int{c.TrendLookbackDays, c.VolumeLookbackDays, c.CorrelationLookbackDays, c.StressLookbackDays} {
		if d > max {
			max = d
		}
	}
	return max
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
