package calculators

import (
	"math"
	"strings"
	"testing"

	"github.com/aristath/riskwatch/internal/domain"
)

func TestVolumeFallbackOnShortSeries(t *testing.T) {
	calc := NewVolume(7)

	result := calc.Calculate([]domain.AssetSeries{
		buildSeries("ETH", []float64{100}, []float64{1000}),
	})

	if !result.Fallback || result.Score != FallbackScore {
		t.Errorf("result = %+v, want fallback at %v", result, FallbackScore)
	}
}

func TestVolumeQuietMarketScoresBase(t *testing.T) {
	calc := NewVolume(7)

	closes := linearCloses(100, 0.1, 31)
	result := calc.Calculate([]domain.AssetSeries{
		buildSeries("ETH", closes, flatVolumes(1000, 31)),
	})

	if result.Fallback {
		t.Fatal("expected a computed score")
	}
	if math.Abs(result.Score-50) > 1e-9 {
		t.Errorf("score = %v, want base 50 for stable volume", result.Score)
	}
	if len(result.Labels) != 0 {
		t.Errorf("expected no labels, got %v", result.Labels)
	}
}

func TestVolumeSingleSpike(t *testing.T) {
	calc := NewVolume(7)

	volumes := flatVolumes(1000, 31)
	volumes[30] = 10000 // 10x jump on the final day

	closes := linearCloses(100, 0.1, 31)
	result := calc.Calculate([]domain.AssetSeries{buildSeries("ETH", closes, volumes)})

	// One spike (+10) and one day-over-day pattern (+5)
	if math.Abs(result.Score-65) > 1e-9 {
		t.Errorf("score = %v, want 65", result.Score)
	}

	if len(result.Labels) != 2 {
		t.Fatalf("labels = %v, want spike and pattern labels", result.Labels)
	}
	if !strings.Contains(result.Labels[0], "volume spike") {
		t.Errorf("labels[0] = %q, want a spike label", result.Labels[0])
	}
	if !strings.Contains(result.Labels[1], "unusual volume pattern") {
		t.Errorf("labels[1] = %q, want a pattern label", result.Labels[1])
	}
}

func TestVolumePenaltiesAreCapped(t *testing.T) {
	calc := NewVolume(7)

	// Four isolated 10x spikes, each alone in its rolling window. Eight
	// day-over-day swings beyond 50%. Both penalties saturate.
	var volumes []float64
	for block := 0; block < 4; block++ {
		volumes = append(volumes, flatVolumes(1000, 7)...)
		volumes = append(volumes, 10000)
	}

	closes := linearCloses(100, 0.1, len(volumes))
	result := calc.Calculate([]domain.AssetSeries{buildSeries("ETH", closes, volumes)})

	if math.Abs(result.Score-100) > 1e-9 {
		t.Errorf("score = %v, want 100 with both penalties capped", result.Score)
	}
}
