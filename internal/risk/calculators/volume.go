package calculators

import (
	"fmt"
	"math"

	"github.com/aristath/riskwatch/internal/domain"
	"github.com/aristath/riskwatch/pkg/formulas"
)

const (
	spikeSigmas         = 2.0
	unusualChangeRatio  = 0.50
	spikePenalty        = 10.0
	spikePenaltyCap     = 30.0
	patternPenalty      = 5.0
	patternPenaltyCap   = 20.0
	volumeBaselineScore = 50.0
)

// Volume scores the basket by volume anomalies: spikes above the rolling
// mean plus two standard deviations, and day-over-day swings above 50%.
type Volume struct {
	WindowDays int
}

// NewVolume creates a volume calculator
func NewVolume(windowDays int) *Volume {
	return &Volume{WindowDays: windowDays}
}

// Calculate counts spikes and unusual patterns across the whole basket and
// converts them into capped penalties on a base score of 50.
func (c *Volume) Calculate(basket []domain.AssetSeries) Result {
	spikes := 0
	patterns := 0
	usable := false

	for _, series := range basket {
		volumes := series.Volumes()
		if len(volumes) < 2 {
			continue
		}
		usable = true

		spikes += countSpikes(volumes, c.WindowDays)
		patterns += countUnusualPatterns(volumes)
	}

	if !usable {
		return Fallback("fewer than 2 volume observations available")
	}

	score := volumeBaselineScore +
		math.Min(spikePenaltyCap, float64(spikes)*spikePenalty) +
		math.Min(patternPenaltyCap, float64(patterns)*patternPenalty)

	var labels []string
	if spikes > 0 {
		labels = append(labels, fmt.Sprintf("%d volume spikes detected", spikes))
	}
	if patterns > 0 {
		labels = append(labels, fmt.Sprintf("%d unusual volume patterns detected", patterns))
	}

	return Computed(score, labels...)
}

// countSpikes flags observations above the rolling mean plus two rolling
// standard deviations. The window shrinks for series shorter than it.
func countSpikes(volumes []float64, window int) int {
	if window > len(volumes) {
		window = len(volumes)
	}
	if window < 2 {
		return 0
	}

	means := formulas.RollingMean(volumes, window)
	devs := formulas.RollingStdDev(volumes, window)

	count := 0
	for i := window - 1; i < len(volumes); i++ {
		if volumes[i] > means[i]+spikeSigmas*devs[i] {
			count++
		}
	}
	return count
}

// countUnusualPatterns flags day-over-day volume changes above 50%
func countUnusualPatterns(volumes []float64) int {
	count := 0
	for i := 1; i < len(volumes); i++ {
		if volumes[i-1] <= 0 {
			continue
		}
		change := math.Abs(volumes[i]-volumes[i-1]) / volumes[i-1]
		if change > unusualChangeRatio {
			count++
		}
	}
	return count
}
