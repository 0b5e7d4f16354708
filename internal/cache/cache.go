package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-level cache with TTL expiry. Get returns (nil, nil) on a
// miss so callers can distinguish "not cached" from a backend failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const keyPrefix = "afasx"

// QuoteKey caches the latest quote for a symbol.
func QuoteKey(symbol string) string {
	return fmt.Sprintf("%s:quote:%s", keyPrefix, symbol)
}

// BarsKey caches a daily bar window for a symbol.
func BarsKey(symbol string, days int) string {
	return fmt.Sprintf("%s:bars:%s:%d", keyPrefix, symbol, days)
}

// CompanyKey caches company metadata for a symbol.
func CompanyKey(symbol string) string {
	return fmt.Sprintf("%s:company:%s", keyPrefix, symbol)
}

// IndicatorsKey caches a computed indicator set. The config hash keeps
// results computed under different windows from colliding.
func IndicatorsKey(symbol string, days int, configHash string) string {
	return fmt.Sprintf("%s:indicators:%s:%d:%s", keyPrefix, symbol, days, configHash)
}
