package indicator

import (
	"fmt"
	"math"
)

// Bollinger computes the upper, middle, and lower bands over a trailing
// window. The middle band is the SMA; the half-width is k times the rolling
// standard deviation of the prices. The deviation is the sample form
// (divide by window-1), matching how spreadsheets and the common charting
// tools compute it. Upper >= middle >= lower at every defined position.
func Bollinger(prices []float64, window int, k float64) (upper, middle, lower []float64, err error) {
	if window <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: Bollinger window %d", ErrInvalidWindow, window)
	}
	if k <= 0 {
		return nil, nil, nil, fmt.Errorf("Bollinger multiplier must be positive, got %g", k)
	}

	middle, err = SMA(prices, window)
	if err != nil {
		return nil, nil, nil, err
	}
	n := len(prices)
	upper = nans(n)
	lower = nans(n)
	if window == 1 {
		// A single-point window has no sample deviation; the bands sit on
		// the middle.
		copy(upper, middle)
		copy(lower, middle)
		return upper, middle, lower, nil
	}

	for i := window - 1; i < n; i++ {
		mean := middle[i]
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := prices[j] - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(window-1))
		upper[i] = mean + k*sd
		lower[i] = mean - k*sd
	}
	return upper, middle, lower, nil
}
