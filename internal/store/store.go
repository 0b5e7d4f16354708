package store

import (
	"context"
	"errors"
	"time"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// ErrNotFound marks a symbol or range the store has no rows for.
var ErrNotFound = errors.New("not found in store")

// Snapshot flattens one analysis run for persistence. Indicators carries
// only the defined latest values, keyed by series name; undefined scalars
// are simply absent.
type Snapshot struct {
	RunID            string
	Symbol           string
	Period           string
	GeneratedAt      time.Time
	Price            float64
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	SharpeRatio      float64
	MaxDrawdown      float64
	Indicators       map[string]float64
}

// Store persists fetched series and analysis results. Bars are an opaque
// cache for offline reuse: correctness of the computation never depends on
// what the store holds.
type Store interface {
	SaveBars(ctx context.Context, symbol string, bars []model.OHLCV) error
	LoadBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	SaveCompanyInfo(ctx context.Context, info model.CompanyInfo) error
	LoadCompanyInfo(ctx context.Context, symbol string) (model.CompanyInfo, error)
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LoadSnapshots(ctx context.Context, symbol string, limit int) ([]Snapshot, error)
	Close() error
}
