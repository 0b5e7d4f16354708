package performance

import (
	"errors"
	"fmt"
	"math"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// ErrInsufficientData is returned when a series holds fewer than two bars.
// A single observation has no return, so unlike the indicator series there
// is nothing meaningful to hand back.
var ErrInsufficientData = errors.New("insufficient data for performance metrics")

// DefaultPeriodsPerYear annualizes daily bar series.
const DefaultPeriodsPerYear = 252

// Returns computes the periodic return sequence close[t]/close[t-1] - 1 in
// bar order, one entry shorter than the series.
func Returns(series *model.PriceSeries) ([]float64, error) {
	if series == nil || series.Len() < 2 {
		n := 0
		if series != nil {
			n = series.Len()
		}
		return nil, fmt.Errorf("%w: need at least 2 bars, have %d", ErrInsufficientData, n)
	}
	closes := series.Closes()
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out, nil
}

// Compute derives the return and risk summary for a series. periodsPerYear
// scales periodic figures to a yearly basis (252 for daily bars, 52 for
// weekly) and riskFreeRate is an annual fraction. Zero volatility yields a
// NaN Sharpe ratio rather than a division fault.
func Compute(series *model.PriceSeries, periodsPerYear int, riskFreeRate float64) (model.PerformanceMetrics, error) {
	if periodsPerYear <= 0 {
		return model.PerformanceMetrics{}, fmt.Errorf("periods per year must be positive, got %d", periodsPerYear)
	}
	rets, err := Returns(series)
	if err != nil {
		return model.PerformanceMetrics{}, err
	}

	closes := series.Closes()
	total := closes[len(closes)-1]/closes[0] - 1

	ppy := float64(periodsPerYear)
	annualized := math.Pow(1+total, ppy/float64(len(rets))) - 1

	mean := meanOf(rets)
	sd := sampleStdDev(rets, mean)
	vol := sd * math.Sqrt(ppy)

	sharpe := math.NaN()
	if vol > 0 {
		sharpe = (annualized - riskFreeRate) / vol
	}

	return model.PerformanceMetrics{
		TotalReturn:      total,
		AnnualizedReturn: annualized,
		Volatility:       vol,
		SharpeRatio:      sharpe,
		MaxDrawdown:      maxDrawdown(closes),
		MeanReturn:       mean,
		ReturnStdDev:     sd,
		Periods:          len(rets),
	}, nil
}

// maxDrawdown returns the deepest peak-to-trough close decline as a
// negative fraction, 0 for a series that never dips below its running peak.
func maxDrawdown(closes []float64) float64 {
	peak := closes[0]
	worst := 0.0
	for _, c := range closes[1:] {
		if c > peak {
			peak = c
			continue
		}
		if peak > 0 {
			if dd := c/peak - 1; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev divides by n-1; a single return has no spread and reads 0.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
