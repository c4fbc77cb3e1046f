package calculators

// FallbackScore is the neutral midpoint score substituted whenever a
// calculator cannot compute a real one.
const FallbackScore = 50.0

// Result is the outcome of one factor calculation: either a computed score
// with optional factor labels, or a neutral fallback carrying the reason.
// Aggregation treats both uniformly; the reason is for diagnostics only.
type Result struct {
	Score    float64
	Labels   []string
	Fallback bool
	Reason   string
}

// Computed builds a successfully computed result
func Computed(score float64, labels ...string) Result {
	return Result{Score: clampScore(score), Labels: labels}
}

// Fallback builds a neutral result for data that cannot be computed on
func Fallback(reason string) Result {
	return Result{Score: FallbackScore, Fallback: true, Reason: reason}
}

// FallbackLabeled builds a neutral result that still contributes factor
// labels, e.g. to surface insufficient correlation data to the caller.
func FallbackLabeled(reason string, labels ...string) Result {
	return Result{Score: FallbackScore, Fallback: true, Reason: reason, Labels: labels}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
