package indicator

import (
	"fmt"
	"math"
)

// MACD computes the MACD line, signal line, and histogram for the given
// prices. The line is EMA(fast) - EMA(slow), defined from position slow-1.
// The signal line is an EMA over the defined part of the line, so it starts
// another signal-1 positions later; the histogram is line minus signal
// wherever both are defined. All three series are aligned to the input.
func MACD(prices []float64, fast, slow, signal int) (line, signalLine, hist []float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: MACD windows %d/%d/%d", ErrInvalidWindow, fast, slow, signal)
	}
	if fast >= slow {
		return nil, nil, nil, fmt.Errorf("MACD fast window %d must be shorter than slow window %d", fast, slow)
	}

	emaFast, err := EMA(prices, fast)
	if err != nil {
		return nil, nil, nil, err
	}
	emaSlow, err := EMA(prices, slow)
	if err != nil {
		return nil, nil, nil, err
	}

	n := len(prices)
	line = nans(n)
	signalLine = nans(n)
	hist = nans(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(emaFast[i]) && !math.IsNaN(emaSlow[i]) {
			line[i] = emaFast[i] - emaSlow[i]
		}
	}
	if n < slow {
		return line, signalLine, hist, nil
	}

	start := slow - 1
	sig, err := EMA(line[start:], signal)
	if err != nil {
		return nil, nil, nil, err
	}
	for i, v := range sig {
		if !math.IsNaN(v) {
			signalLine[start+i] = v
		}
	}
	for i := 0; i < n; i++ {
		if !math.IsNaN(line[i]) && !math.IsNaN(signalLine[i]) {
			hist[i] = line[i] - signalLine[i]
		}
	}
	return line, signalLine, hist, nil
}
