package fetcher

import (
	"context"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// Fetcher defines the interface for fetching market data. Implementations
// own their timeouts and retries; callers treat any error as data
// unavailable and decide themselves whether to fall back.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
	FetchCompanyInfo(ctx context.Context, symbol string) (model.CompanyInfo, error)
	Name() string
}
