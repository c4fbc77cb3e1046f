package formulas

import (
	"github.com/markcheno/go-talib"
)

// RollingMean returns the simple moving average of data over the given
// window. Entries before the window has filled are 0. If the series is
// shorter than the window the window shrinks to the series length.
func RollingMean(data []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	if window > len(data) {
		window = len(data)
	}
	if len(data) == 0 {
		return nil
	}
	if window == 1 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}
	return talib.Sma(data, window)
}

// RollingStdDev returns the rolling population standard deviation of data
// over the given window, with the same warm-up behavior as RollingMean.
func RollingStdDev(data []float64, window int) []float64 {
	if window < 2 || len(data) < 2 {
		return make([]float64, len(data))
	}
	if window > len(data) {
		window = len(data)
	}
	return talib.StdDev(data, window, 1.0)
}

// RateOfChange returns the n-period rate of change of data as a fraction
// (0.10 means +10%). Entries before the window has filled are 0.
func RateOfChange(data []float64, period int) []float64 {
	if period < 1 || len(data) <= period {
		return make([]float64, len(data))
	}
	roc := talib.Roc(data, period)
	for i := range roc {
		roc[i] /= 100
	}
	return roc
}
