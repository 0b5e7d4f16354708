package indicator

import "fmt"

// RSI computes the Wilder-smoothed Relative Strength Index over a trailing
// window. The first window positions are NaN since the first average needs
// window price changes. From there the averages are smoothed as
// avg = (avg*(window-1) + current) / window. A window with zero average
// loss reads 100, so an all-gain stretch never divides by zero; an all-loss
// stretch reads 0.
func RSI(prices []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: RSI window %d", ErrInvalidWindow, window)
	}
	out := nans(len(prices))
	if len(prices) < window+1 {
		return out, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
