package indicator

import (
	"errors"
	"fmt"
	"hash/fnv"
)

// Default windows used when the configuration file does not override them.
const (
	DefaultRSIWindow       = 14
	DefaultMACDFast        = 12
	DefaultMACDSlow        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerWindow = 20
	DefaultBollingerK      = 2.0
)

// ErrInvalidWindow marks a non-positive lookback window.
var ErrInvalidWindow = errors.New("window must be positive")

// Config selects which indicators ComputeAll produces. An empty window list
// or zero window disables that group, so callers can compute exactly what
// they need. A Config is a plain value passed into each call and is never
// stored or mutated by the engine, which keeps parallel analyses with
// different settings independent.
type Config struct {
	SMAWindows      []int
	EMAWindows      []int
	RSIWindow       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerWindow int
	BollingerK      float64
}

// DefaultConfig returns the windows the standard report is built around.
func DefaultConfig() Config {
	return Config{
		SMAWindows:      []int{20, 50, 200},
		EMAWindows:      []int{12, 26},
		RSIWindow:       DefaultRSIWindow,
		MACDFast:        DefaultMACDFast,
		MACDSlow:        DefaultMACDSlow,
		MACDSignal:      DefaultMACDSignal,
		BollingerWindow: DefaultBollingerWindow,
		BollingerK:      DefaultBollingerK,
	}
}

// MACDEnabled reports whether all three MACD windows are configured.
func (c Config) MACDEnabled() bool {
	return c.MACDFast > 0 && c.MACDSlow > 0 && c.MACDSignal > 0
}

// Validate rejects window settings the engine cannot compute.
func (c Config) Validate() error {
	for _, w := range c.SMAWindows {
		if w <= 0 {
			return fmt.Errorf("%w: SMA window %d", ErrInvalidWindow, w)
		}
	}
	for _, w := range c.EMAWindows {
		if w <= 0 {
			return fmt.Errorf("%w: EMA window %d", ErrInvalidWindow, w)
		}
	}
	if c.RSIWindow < 0 {
		return fmt.Errorf("%w: RSI window %d", ErrInvalidWindow, c.RSIWindow)
	}
	macdSet := c.MACDFast > 0 || c.MACDSlow > 0 || c.MACDSignal > 0
	if macdSet && !c.MACDEnabled() {
		return fmt.Errorf("MACD needs fast, slow and signal windows, got %d/%d/%d",
			c.MACDFast, c.MACDSlow, c.MACDSignal)
	}
	if c.MACDEnabled() && c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("MACD fast window %d must be shorter than slow window %d",
			c.MACDFast, c.MACDSlow)
	}
	if c.BollingerWindow < 0 {
		return fmt.Errorf("%w: Bollinger window %d", ErrInvalidWindow, c.BollingerWindow)
	}
	if c.BollingerWindow > 0 && c.BollingerK <= 0 {
		return fmt.Errorf("Bollinger multiplier must be positive, got %g", c.BollingerK)
	}
	return nil
}

// Hash returns a short stable digest of the configuration. Cached indicator
// sets are keyed by it so analyses with different windows never collide.
func (c Config) Hash() string {
	h := fnv.New32a()
	fmt.Fprintf(h, "sma=%v|ema=%v|rsi=%d|macd=%d/%d/%d|bb=%d/%g",
		c.SMAWindows, c.EMAWindows, c.RSIWindow,
		c.MACDFast, c.MACDSlow, c.MACDSignal,
		c.BollingerWindow, c.BollingerK)
	return fmt.Sprintf("%08x", h.Sum32())
}
