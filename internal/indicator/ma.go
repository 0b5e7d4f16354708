package indicator

import (
	"fmt"
	"math"
)

// SMA computes the simple moving average of prices over a trailing window.
// The result is aligned to the input: positions with fewer than window
// values at or before them are NaN, so a short history yields a full-length
// series rather than an error.
func SMA(prices []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: SMA window %d", ErrInvalidWindow, window)
	}
	out := nans(len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}

// EMA computes the exponential moving average with smoothing 2/(window+1).
// The value at position window-1 is seeded with the SMA of the first window
// prices; later positions follow EMA[t] = price[t]*a + EMA[t-1]*(1-a).
func EMA(prices []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: EMA window %d", ErrInvalidWindow, window)
	}
	out := nans(len(prices))
	if len(prices) < window {
		return out, nil
	}
	seed := 0.0
	for i := 0; i < window; i++ {
		seed += prices[i]
	}
	seed /= float64(window)
	out[window-1] = seed

	alpha := 2.0 / float64(window+1)
	prev := seed
	for i := window; i < len(prices); i++ {
		prev = prices[i]*alpha + prev*(1-alpha)
		out[i] = prev
	}
	return out, nil
}

// nans returns a slice of the given length with every position undefined.
func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
