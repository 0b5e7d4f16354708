package cache

import (
	"context"
	"time"
)

// Noop is a cache that stores nothing and always misses. It keeps the
// pipeline code uniform when caching is disabled.
type Noop struct{}

// NewNoop returns the disabled cache.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) Get(_ context.Context, _ string) ([]byte, error) { return nil, nil }

func (*Noop) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }

func (*Noop) Delete(_ context.Context, _ string) error { return nil }

func (*Noop) Close() error { return nil }
