package indicator

import (
	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// ComputeAll runs every indicator enabled in cfg over the series and
// collects the results into a named set. The series is read-only here; all
// returned data is newly allocated. A history shorter than a window is not
// an error: the unsatisfied positions carry NaN. Every value at position t
// depends only on bars at or before t.
func ComputeAll(series *model.PriceSeries, cfg Config) (*model.IndicatorSet, error) {
	if series == nil || series.Len() == 0 {
		return nil, model.ErrEmptySeries
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	set := model.NewIndicatorSet(len(closes))

	for _, w := range cfg.SMAWindows {
		values, err := SMA(closes, w)
		if err != nil {
			return nil, err
		}
		if err := set.Add(model.SMAName(w), values); err != nil {
			return nil, err
		}
	}
	for _, w := range cfg.EMAWindows {
		values, err := EMA(closes, w)
		if err != nil {
			return nil, err
		}
		if err := set.Add(model.EMAName(w), values); err != nil {
			return nil, err
		}
	}
	if cfg.RSIWindow > 0 {
		values, err := RSI(closes, cfg.RSIWindow)
		if err != nil {
			return nil, err
		}
		if err := set.Add(model.RSIName(cfg.RSIWindow), values); err != nil {
			return nil, err
		}
	}
	if cfg.MACDEnabled() {
		line, signal, hist, err := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
		if err != nil {
			return nil, err
		}
		if err := set.Add(model.NameMACD, line); err != nil {
			return nil, err
		}
		if err := set.Add(model.NameMACDSignal, signal); err != nil {
			return nil, err
		}
		if err := set.Add(model.NameMACDHist, hist); err != nil {
			return nil, err
		}
	}
	if cfg.BollingerWindow > 0 {
		upper, middle, lower, err := Bollinger(closes, cfg.BollingerWindow, cfg.BollingerK)
		if err != nil {
			return nil, err
		}
		if err := set.Add(model.NameBBUpper, upper); err != nil {
			return nil, err
		}
		if err := set.Add(model.NameBBMiddle, middle); err != nil {
			return nil, err
		}
		if err := set.Add(model.NameBBLower, lower); err != nil {
			return nil, err
		}
	}
	return set, nil
}
