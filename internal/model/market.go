package model

import (
	"errors"
	"fmt"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the ordered daily bars for one symbol. Bars are sorted
// ascending by time with no duplicate timestamps; gaps for non-trading days
// are fine. A series is validated once on construction and treated as
// read-only afterwards.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

var (
	ErrEmptySeries     = errors.New("price series is empty")
	ErrUnorderedSeries = errors.New("price series bars are not strictly ascending")
)

// NewPriceSeries validates bars and wraps them in a PriceSeries.
func NewPriceSeries(symbol string, bars []OHLCV) (*PriceSeries, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySeries, symbol)
	}
	for i, b := range bars {
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("%w: %s at index %d", ErrUnorderedSeries, symbol, i)
		}
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 {
			return nil, fmt.Errorf("negative value in bar %d for %s", i, symbol)
		}
	}
	return &PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the closing prices in bar order.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar, or false when the series is empty.
func (s *PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Quote is a point-in-time price observation.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	PrevClose float64   `json:"prev_close"`
	Time      time.Time `json:"time"`
}
