package performance

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(want) {
		if !math.IsNaN(got) {
			t.Errorf("%s: expected NaN, got %v", label, got)
		}
		return
	}
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v (tolerance %v)", label, got, want, tol)
	}
}

func seriesFromCloses(t *testing.T, closes []float64) *model.PriceSeries {
	t.Helper()
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	s, err := model.NewPriceSeries("AFI.AX", bars)
	if err != nil {
		t.Fatalf("building series: %v", err)
	}
	return s
}

func TestReturns(t *testing.T) {
	s := seriesFromCloses(t, []float64{100, 110, 104.5})
	rets, err := Returns(s)
	if err != nil {
		t.Fatalf("Returns: %v", err)
	}
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	assertClose(t, "return[0]", rets[0], 0.10, 1e-9)
	assertClose(t, "return[1]", rets[1], -0.05, 1e-9)
}

func TestReturns_InsufficientData(t *testing.T) {
	s := seriesFromCloses(t, []float64{100})
	if _, err := Returns(s); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := Returns(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for nil series, got %v", err)
	}
}

func TestCompute_SingleBarFails(t *testing.T) {
	s := seriesFromCloses(t, []float64{100})
	if _, err := Compute(s, DefaultPeriodsPerYear, 0); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCompute_FlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 88.8
	}
	m, err := Compute(seriesFromCloses(t, closes), DefaultPeriodsPerYear, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "total return", m.TotalReturn, 0, 1e-12)
	assertClose(t, "annualized return", m.AnnualizedReturn, 0, 1e-12)
	assertClose(t, "volatility", m.Volatility, 0, 1e-12)
	if !math.IsNaN(m.SharpeRatio) {
		t.Errorf("Sharpe on zero volatility should be NaN, got %v", m.SharpeRatio)
	}
	assertClose(t, "max drawdown", m.MaxDrawdown, 0, 1e-12)
	if m.Periods != 29 {
		t.Errorf("Periods = %d, want 29", m.Periods)
	}
}

func TestCompute_HandComputed(t *testing.T) {
	// Returns are +10% and -5%: mean 0.025, sample sd
	// sqrt((0.075^2 + 0.075^2)/1) = 0.10606602.
	s := seriesFromCloses(t, []float64{100, 110, 104.5})
	m, err := Compute(s, 252, 0.02)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "total return", m.TotalReturn, 0.045, 1e-9)
	assertClose(t, "mean return", m.MeanReturn, 0.025, 1e-9)
	assertClose(t, "return sd", m.ReturnStdDev, 0.10606602, 1e-7)
	assertClose(t, "volatility", m.Volatility, 0.10606602*math.Sqrt(252), 1e-6)

	wantAnn := math.Pow(1.045, 252.0/2.0) - 1
	assertClose(t, "annualized return", m.AnnualizedReturn, wantAnn, 1e-6)
	assertClose(t, "sharpe", m.SharpeRatio, (wantAnn-0.02)/m.Volatility, 1e-9)
}

func TestCompute_AnnualizationCompounds(t *testing.T) {
	// A doubling over two years of daily bars annualizes to sqrt(2)-1.
	n := 505
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 * math.Pow(2, float64(i)/float64(n-1))
	}
	m, err := Compute(seriesFromCloses(t, closes), 252, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "total return", m.TotalReturn, 1.0, 1e-9)
	assertClose(t, "annualized return", m.AnnualizedReturn, math.Sqrt2-1, 1e-6)
}

func TestCompute_PeriodsPerYearScalesVolatility(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 99, 98, 104, 107, 106}
	daily, err := Compute(seriesFromCloses(t, closes), 252, 0)
	if err != nil {
		t.Fatalf("Compute daily: %v", err)
	}
	quarterDensity, err := Compute(seriesFromCloses(t, closes), 63, 0)
	if err != nil {
		t.Fatalf("Compute 63: %v", err)
	}
	// sqrt(252)/sqrt(63) = 2.
	assertClose(t, "volatility ratio", daily.Volatility/quarterDensity.Volatility, 2.0, 1e-9)

	if _, err := Compute(seriesFromCloses(t, closes), 0, 0); err == nil {
		t.Error("expected error for non-positive periods per year")
	}
}

func TestMaxDrawdown(t *testing.T) {
	rising := seriesFromCloses(t, []float64{100, 101, 102, 103})
	m, err := Compute(rising, 252, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "rising drawdown", m.MaxDrawdown, 0, 1e-12)

	// Deepest fall is 80 against the 120 peak: 80/120 - 1 = -1/3.
	choppy := seriesFromCloses(t, []float64{100, 120, 90, 110, 80})
	m, err = Compute(choppy, 252, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	assertClose(t, "choppy drawdown", m.MaxDrawdown, -1.0/3.0, 1e-9)
}
