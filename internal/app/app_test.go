package app

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zupad/AFASX-Stock-Program/internal/cache"
	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/store"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestBuildTracker_Defaults(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Database.Driver = "none"
	cfg.Cache.Backend = "memory"

	tr, cleanup := BuildTracker(cfg, prometheus.NewRegistry())
	defer cleanup()

	if tr.Primary == nil || tr.Primary.Name() != "yahoo" {
		t.Error("primary fetcher should be yahoo")
	}
	if tr.Secondary != nil {
		t.Error("no secondary without an API key")
	}
	if _, ok := tr.Store.(*store.Noop); !ok {
		t.Errorf("store = %T, want noop", tr.Store)
	}
	if _, ok := tr.Cache.(*cache.MemoryCache); !ok {
		t.Errorf("cache = %T, want memory", tr.Cache)
	}
	if len(tr.Notifiers) != 1 {
		t.Errorf("notifiers = %d, want just the log notifier", len(tr.Notifiers))
	}
}

func TestBuildTracker_FullStack(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "afasx.db")
	cfg.Cache.Backend = "none"
	cfg.DataSource.AlphaVantageKey = "demo"
	cfg.Alerts.WebhookURL = "http://localhost:9/hook"

	tr, cleanup := BuildTracker(cfg, prometheus.NewRegistry())
	defer cleanup()

	if tr.Secondary == nil || tr.Secondary.Name() != "alphavantage" {
		t.Error("secondary fetcher should be alphavantage")
	}
	if _, ok := tr.Store.(*store.SQLiteStore); !ok {
		t.Errorf("store = %T, want sqlite", tr.Store)
	}
	if _, ok := tr.Cache.(*cache.Noop); !ok {
		t.Errorf("cache = %T, want noop", tr.Cache)
	}
	if len(tr.Notifiers) != 2 {
		t.Errorf("notifiers = %d, want log and webhook", len(tr.Notifiers))
	}
}

func TestBuildTracker_SQLiteFallsBackToNoop(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "missing-dir", "deeper", "afasx.db")
	cfg.Cache.Backend = "memory"

	tr, cleanup := BuildTracker(cfg, prometheus.NewRegistry())
	defer cleanup()

	if _, ok := tr.Store.(*store.Noop); !ok {
		t.Errorf("store = %T, want noop fallback for an unopenable path", tr.Store)
	}
}
