package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Canonical names for the fixed-window indicator series. Window-based names
// are derived with the helpers below so configured windows and series names
// never drift apart.
const (
	NameMACD       = "MACD"
	NameMACDSignal = "MACD_SIGNAL"
	NameMACDHist   = "MACD_HIST"
	NameBBUpper    = "BB_UPPER"
	NameBBMiddle   = "BB_MIDDLE"
	NameBBLower    = "BB_LOWER"
)

// SMAName returns the series name for a simple moving average window.
func SMAName(window int) string { return fmt.Sprintf("SMA_%d", window) }

// EMAName returns the series name for an exponential moving average window.
func EMAName(window int) string { return fmt.Sprintf("EMA_%d", window) }

// RSIName returns the series name for an RSI window.
func RSIName(window int) string { return fmt.Sprintf("RSI_%d", window) }

// IndicatorSet holds derived series aligned to the source bars, plus the
// latest value of each series as a scalar. Positions where an indicator's
// lookback window is not yet satisfied carry NaN; a series is always the
// same length as the bars it was computed from.
type IndicatorSet struct {
	Length int
	Series map[string][]float64
	Latest map[string]float64
}

// NewIndicatorSet returns an empty set for series of the given length.
func NewIndicatorSet(length int) *IndicatorSet {
	return &IndicatorSet{
		Length: length,
		Series: make(map[string][]float64),
		Latest: make(map[string]float64),
	}
}

// Add stores a named series and records its final value as the scalar.
// Series of the wrong length are rejected so alignment cannot break.
func (s *IndicatorSet) Add(name string, values []float64) error {
	if len(values) != s.Length {
		return fmt.Errorf("series %s has length %d, want %d", name, len(values), s.Length)
	}
	s.Series[name] = values
	if s.Length > 0 {
		s.Latest[name] = values[s.Length-1]
	} else {
		s.Latest[name] = math.NaN()
	}
	return nil
}

// Get returns a named series, or false when it was not computed.
func (s *IndicatorSet) Get(name string) ([]float64, bool) {
	v, ok := s.Series[name]
	return v, ok
}

// LatestValue returns the scalar for a name, NaN when absent.
func (s *IndicatorSet) LatestValue(name string) float64 {
	v, ok := s.Latest[name]
	if !ok {
		return math.NaN()
	}
	return v
}

// Names returns the computed series names in unspecified order.
func (s *IndicatorSet) Names() []string {
	out := make([]string, 0, len(s.Series))
	for name := range s.Series {
		out = append(out, name)
	}
	return out
}

// indicatorSetJSON is the wire form of an IndicatorSet. NaN has no JSON
// encoding, so undefined positions travel as null.
type indicatorSetJSON struct {
	Length int                   `json:"length"`
	Series map[string][]*float64 `json:"series"`
	Latest map[string]*float64   `json:"latest"`
}

// MarshalJSON implements json.Marshaler.
func (s *IndicatorSet) MarshalJSON() ([]byte, error) {
	w := indicatorSetJSON{
		Length: s.Length,
		Series: make(map[string][]*float64, len(s.Series)),
		Latest: make(map[string]*float64, len(s.Latest)),
	}
	for name, values := range s.Series {
		enc := make([]*float64, len(values))
		for i := range values {
			enc[i] = floatToJSON(values[i])
		}
		w.Series[name] = enc
	}
	for name, v := range s.Latest {
		w.Latest[name] = floatToJSON(v)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *IndicatorSet) UnmarshalJSON(data []byte) error {
	var w indicatorSetJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Length = w.Length
	s.Series = make(map[string][]float64, len(w.Series))
	s.Latest = make(map[string]float64, len(w.Latest))
	for name, values := range w.Series {
		dec := make([]float64, len(values))
		for i := range values {
			dec[i] = floatFromJSON(values[i])
		}
		s.Series[name] = dec
	}
	for name, v := range w.Latest {
		s.Latest[name] = floatFromJSON(v)
	}
	return nil
}

func floatToJSON(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func floatFromJSON(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
