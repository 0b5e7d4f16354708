package store

import (
	"context"
	"fmt"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// Noop discards all writes. Loads report ErrNotFound so fallback reads
// behave the same as with an empty database.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) SaveBars(ctx context.Context, symbol string, bars []model.OHLCV) error { return nil }

func (Noop) LoadBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	return nil, fmt.Errorf("%w: bars for %s", ErrNotFound, symbol)
}

func (Noop) SaveCompanyInfo(ctx context.Context, info model.CompanyInfo) error { return nil }

func (Noop) LoadCompanyInfo(ctx context.Context, symbol string) (model.CompanyInfo, error) {
	return model.CompanyInfo{}, fmt.Errorf("%w: company info for %s", ErrNotFound, symbol)
}

func (Noop) SaveSnapshot(ctx context.Context, snap *Snapshot) error { return nil }

func (Noop) LoadSnapshots(ctx context.Context, symbol string, limit int) ([]Snapshot, error) {
	return nil, nil
}

func (Noop) Close() error { return nil }
