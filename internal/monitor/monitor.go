package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskwatch/internal/domain"
)

// RiskScorer is the analyzer surface the monitor consumes
type RiskScorer interface {
	CalculateRiskScore(ctx context.Context, assets []string) (domain.RiskMetrics, error)
}

// Job periodically assesses the configured basket and raises an alert log
// when the composite score crosses the alert threshold. It satisfies the
// scheduler's Job interface.
type Job struct {
	scorer     RiskScorer
	assets     []string
	alertScore float64
	timeout    time.Duration
	log        zerolog.Logger
}

// NewJob creates a monitoring job. timeout bounds a single assessment so a
// slow provider cannot stall the schedule.
func NewJob(scorer RiskScorer, assets []string, alertScore float64, timeout time.Duration, log zerolog.Logger) *Job {
	return &Job{
		scorer:     scorer,
		assets:     assets,
		alertScore: alertScore,
		timeout:    timeout,
		log:        log.With().Str("component", "risk_monitor").Logger(),
	}
}

// Name returns the job name for scheduler logs
func (j *Job) Name() string {
	return "risk-monitor"
}

// Run performs one monitoring cycle
func (j *Job) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	metrics, err := j.scorer.CalculateRiskScore(ctx, j.assets)
	if err != nil {
		return err
	}

	event := j.log.Info()
	if metrics.CompositeRiskScore > j.alertScore {
		event = j.log.Warn().Bool("alert", true)
	}

	event.
		Strs("assets", j.assets).
		Float64("composite", metrics.CompositeRiskScore).
		Str("risk_level", string(metrics.RiskLevel)).
		Strs("factors", metrics.RiskFactors).
		Msg("Periodic risk assessment")

	return nil
}
