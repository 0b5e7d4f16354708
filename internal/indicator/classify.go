package indicator

import "math"

// Classification labels attached to report rows.
const (
	Overbought = "Overbought"
	Oversold   = "Oversold"
	Neutral    = "Neutral"
	Above      = "Above"
	Below      = "Below"
	Equal      = "Equal"
	Unknown    = "Unknown"
)

// RSI zone boundaries.
const (
	OverboughtThreshold = 70.0
	OversoldThreshold   = 30.0
)

// ClassifyRSI maps an RSI reading to its zone.
func ClassifyRSI(rsi float64) string {
	switch {
	case math.IsNaN(rsi):
		return Unknown
	case rsi >= OverboughtThreshold:
		return Overbought
	case rsi <= OversoldThreshold:
		return Oversold
	default:
		return Neutral
	}
}

// ClassifyPriceVsSMA reports where a price sits relative to a moving
// average.
func ClassifyPriceVsSMA(price, sma float64) string {
	switch {
	case math.IsNaN(price) || math.IsNaN(sma):
		return Unknown
	case price > sma:
		return Above
	case price < sma:
		return Below
	default:
		return Equal
	}
}
