package fetcher

import (
	"context"
	"time"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// MockFetcher returns controllable fixed data for development and the
// offline self test. Explicit fields win; otherwise bars are generated as a
// gentle ramp around Price.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Company   model.CompanyInfo
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (model.Quote, error) {
	if m.Err != nil {
		return model.Quote{}, m.Err
	}
	if n := len(m.DailyData); n >= 2 {
		return model.Quote{
			Symbol:    symbol,
			Price:     m.DailyData[n-1].Close,
			PrevClose: m.DailyData[n-2].Close,
			Time:      m.DailyData[n-1].Time,
		}, nil
	}
	return model.Quote{Symbol: symbol, Price: m.Price, PrevClose: m.Price, Time: time.Now()}, nil
}

func (m *MockFetcher) FetchCompanyInfo(_ context.Context, symbol string) (model.CompanyInfo, error) {
	if m.Err != nil {
		return model.CompanyInfo{}, m.Err
	}
	if m.Company.Available {
		return m.Company, nil
	}
	return model.CompanyInfo{
		Symbol:    symbol,
		LongName:  model.DisplayName(symbol),
		Sector:    "Financial Services",
		Industry:  "Asset Management",
		MarketCap: 8_500_000_000,
		Currency:  "AUD",
		Exchange:  "ASX",
		Available: true,
	}, nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	bars := make([]model.OHLCV, count)
	start := time.Now().AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
