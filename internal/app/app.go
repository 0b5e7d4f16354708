// Package app wires the analysis pipeline from configuration. Both binaries
// build their Tracker here so store, cache, and notifier selection stays in
// one place.
package app

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zupad/AFASX-Stock-Program/internal/alert"
	"github.com/zupad/AFASX-Stock-Program/internal/cache"
	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/fetcher"
	"github.com/zupad/AFASX-Stock-Program/internal/metrics"
	"github.com/zupad/AFASX-Stock-Program/internal/store"
	"github.com/zupad/AFASX-Stock-Program/internal/tracker"
)

// BuildTracker assembles fetchers, store, cache, metrics, and notifiers into
// a Tracker. Pass prometheus.DefaultRegisterer outside of tests. The returned
// cleanup closes the store and the cache.
func BuildTracker(cfg *config.Config, reg prometheus.Registerer) (*tracker.Tracker, func()) {
	primary := fetcher.NewYahooFetcher(cfg.DataSource.YahooBaseURL)
	log.Printf("[INFO] primary data source: %s", primary.Name())

	var secondary fetcher.Fetcher
	if cfg.DataSource.AlphaVantageKey != "" {
		secondary = fetcher.NewAlphaVantageFetcher(
			cfg.DataSource.AlphaVantageURL,
			cfg.DataSource.AlphaVantageKey,
			time.Duration(cfg.DataSource.MinRequestSeconds)*time.Second,
		)
		log.Printf("[INFO] secondary data source: %s", secondary.Name())
	}

	st := openStore(cfg)
	c := openCache(cfg)

	notifiers := []alert.Notifier{alert.NewLogNotifier()}
	if cfg.Alerts.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewWebhookNotifier(cfg.Alerts.WebhookURL))
		log.Println("[INFO] webhook notifier enabled")
	}

	tr := tracker.New(cfg, primary, secondary, st, c, metrics.New(reg), notifiers)
	cleanup := func() {
		if err := c.Close(); err != nil {
			log.Printf("[WARN] close cache: %v", err)
		}
		if err := st.Close(); err != nil {
			log.Printf("[WARN] close store: %v", err)
		}
	}
	return tr, cleanup
}

// openStore falls back to the no-op store rather than failing the binary; an
// analysis without persistence is still useful.
func openStore(cfg *config.Config) store.Store {
	switch cfg.Database.Driver {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] open sqlite store failed, using noop: %v", err)
			return store.NewNoop()
		}
		return s
	case "postgres":
		s, err := store.NewPostgresStore(cfg.Database.PostgresDSN)
		if err != nil {
			log.Printf("[WARN] connect postgres failed, using noop: %v", err)
			return store.NewNoop()
		}
		return s
	default:
		return store.NewNoop()
	}
}

func openCache(cfg *config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case "redis":
		c, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Printf("[WARN] redis unavailable, using in-process cache: %v", err)
			return cache.NewMemoryCache()
		}
		return c
	case "memory":
		return cache.NewMemoryCache()
	default:
		return cache.NewNoop()
	}
}
