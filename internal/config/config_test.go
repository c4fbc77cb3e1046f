package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, []string{"ETH", "USDC", "LINK"}, cfg.Assets)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.MonitorInterval)
	assert.Equal(t, 4, cfg.MaxConcurrentFetches)
	assert.Equal(t, 30, cfg.VolatilityLookbackDays)
	assert.Equal(t, 14, cfg.TrendLookbackDays)
	assert.Equal(t, 7, cfg.VolumeLookbackDays)
	assert.Equal(t, 70.0, cfg.VolatilityAlertScore)
	assert.Equal(t, 75.0, cfg.RiskAlertScore)
	assert.NoError(t, cfg.Weights.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RISK_ASSETS", " BTC , ETH ,,SOL")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("MONITOR_INTERVAL_SECONDS", "120")
	t.Setenv("TREND_LOOKBACK_DAYS", "21")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, cfg.Assets)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.MonitorInterval)
	assert.Equal(t, 21, cfg.TrendLookbackDays)
	assert.True(t, cfg.DevMode)
}

func TestLoadInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("WEIGHT_VOLATILITY", "garbage")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 0.25, cfg.Weights.Volatility)
}

func TestValidateRejectsBadWeights(t *testing.T) {
	t.Setenv("WEIGHT_VOLATILITY", "0.50")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights")
}

func TestValidateRejectsTTLExceedingInterval(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "900")
	t.Setenv("MONITOR_INTERVAL_SECONDS", "900")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring interval")
}

func TestValidateRejectsShortLookback(t *testing.T) {
	t.Setenv("VOLUME_LOOKBACK_DAYS", "1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VOLUME_LOOKBACK_DAYS")
}

func TestValidateRejectsEmptyAssetList(t *testing.T) {
	t.Setenv("RISK_ASSETS", " , ,")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_ASSETS")
}

func TestValidateRejectsOutOfRangeAlertScore(t *testing.T) {
	t.Setenv("RISK_ALERT_SCORE", "150")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_ALERT_SCORE")
}

func TestMaxLookbackDays(t *testing.T) {
	t.Setenv("CORRELATION_LOOKBACK_DAYS", "90")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.MaxLookbackDays())
}
