package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zupad/AFASX-Stock-Program/internal/indicator"
	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// Input carries everything Assemble combines into a Report. Series and
// Symbol are required; the rest defaults sensibly: a nil Performance or
// Indicators shows up as unavailable, an empty RunID draws a fresh UUID,
// and a zero GeneratedAt is stamped with the current time. Supplying RunID
// and GeneratedAt keeps assembly fully deterministic.
type Input struct {
	Symbol      string
	DisplayName string
	Period      string
	Series      *model.PriceSeries
	Indicators  *model.IndicatorSet
	Performance *model.PerformanceMetrics
	Company     model.CompanyInfo
	RunID       string
	GeneratedAt time.Time
}

// Assemble builds the final Report value from computed parts. It performs
// no I/O and never mutates its inputs; every Report field is either a
// concrete value or an explicit unavailable marker, so renderers can rely
// on the full shape being present.
func Assemble(in Input) (*model.Report, error) {
	if strings.TrimSpace(in.Symbol) == "" {
		return nil, fmt.Errorf("report needs a symbol")
	}
	if in.Series == nil || in.Series.Len() == 0 {
		return nil, fmt.Errorf("report for %s: %w", in.Symbol, model.ErrEmptySeries)
	}

	set := in.Indicators
	if set == nil {
		set = model.NewIndicatorSet(in.Series.Len())
	}

	perf := unavailableMetrics()
	if in.Performance != nil {
		perf = *in.Performance
	}

	runID := in.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	displayName := in.DisplayName
	if displayName == "" {
		displayName = model.DisplayName(in.Symbol)
	}

	return &model.Report{
		RunID:           runID,
		GeneratedAt:     generatedAt,
		Symbol:          in.Symbol,
		DisplayName:     displayName,
		Period:          in.Period,
		Bars:            in.Series.Len(),
		Snapshot:        buildSnapshot(in.Series),
		Indicators:      set,
		Performance:     perf,
		Company:         in.Company,
		Classifications: classify(in.Series, set),
	}, nil
}

func buildSnapshot(series *model.PriceSeries) model.PriceSnapshot {
	last, _ := series.Last()
	snap := model.PriceSnapshot{
		Price:         last.Close,
		Change:        math.NaN(),
		ChangePercent: math.NaN(),
		High52w:       math.NaN(),
		Low52w:        math.NaN(),
		Volume:        last.Volume,
		AsOf:          last.Time,
	}
	if series.Len() >= 2 {
		prev := series.Bars[series.Len()-2].Close
		snap.Change = last.Close - prev
		if prev != 0 {
			snap.ChangePercent = (last.Close - prev) / prev
		}
	}
	if high, low, err := indicator.Range52Week(series.Bars); err == nil {
		snap.High52w = high
		snap.Low52w = low
	}
	return snap
}

// classify labels the latest RSI reading and the price position against
// each configured moving average, keyed by series name.
func classify(series *model.PriceSeries, set *model.IndicatorSet) map[string]string {
	out := make(map[string]string)
	last, ok := series.Last()
	if !ok {
		return out
	}
	for _, name := range set.Names() {
		switch {
		case strings.HasPrefix(name, "RSI_"):
			out[name] = indicator.ClassifyRSI(set.LatestValue(name))
		case strings.HasPrefix(name, "SMA_"):
			out[name] = indicator.ClassifyPriceVsSMA(last.Close, set.LatestValue(name))
		}
	}
	return out
}

func unavailableMetrics() model.PerformanceMetrics {
	nan := math.NaN()
	return model.PerformanceMetrics{
		TotalReturn:      nan,
		AnnualizedReturn: nan,
		Volatility:       nan,
		SharpeRatio:      nan,
		MaxDrawdown:      nan,
		MeanReturn:       nan,
		ReturnStdDev:     nan,
	}
}
