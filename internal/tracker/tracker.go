// Package tracker runs the full analysis pipeline: load bars, compute
// indicators and performance, assemble the report, persist and notify.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/zupad/AFASX-Stock-Program/internal/alert"
	"github.com/zupad/AFASX-Stock-Program/internal/cache"
	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/fetcher"
	"github.com/zupad/AFASX-Stock-Program/internal/indicator"
	"github.com/zupad/AFASX-Stock-Program/internal/metrics"
	"github.com/zupad/AFASX-Stock-Program/internal/model"
	"github.com/zupad/AFASX-Stock-Program/internal/performance"
	"github.com/zupad/AFASX-Stock-Program/internal/report"
	"github.com/zupad/AFASX-Stock-Program/internal/store"
)

// Tracker orchestrates one analysis run at a time. Fetch sources are tried
// in order, with the store as the offline fallback; cache and store failures
// degrade the run but never abort it.
type Tracker struct {
	Primary   fetcher.Fetcher
	Secondary fetcher.Fetcher
	Store     store.Store
	Cache     cache.Cache
	Metrics   *metrics.Metrics
	Notifiers []alert.Notifier

	Indicators     indicator.Config
	PeriodsPerYear int
	RiskFreeRate   float64
	AlertThreshold float64

	QuoteTTL     time.Duration
	BarsTTL      time.Duration
	CompanyTTL   time.Duration
	IndicatorTTL time.Duration
}

// New wires a Tracker from config and collaborators. secondary may be nil.
func New(cfg *config.Config, primary, secondary fetcher.Fetcher, st store.Store, c cache.Cache, m *metrics.Metrics, notifiers []alert.Notifier) *Tracker {
	return &Tracker{
		Primary:   primary,
		Secondary: secondary,
		Store:     st,
		Cache:     c,
		Metrics:   m,
		Notifiers: notifiers,

		Indicators:     cfg.IndicatorConfig(),
		PeriodsPerYear: cfg.Analysis.PeriodsPerYear,
		RiskFreeRate:   cfg.Analysis.RiskFreeRate,
		AlertThreshold: cfg.Alerts.PriceChangeThreshold,

		QuoteTTL:     time.Duration(cfg.Cache.QuoteTTLSeconds) * time.Second,
		BarsTTL:      time.Duration(cfg.Cache.BarsTTLSeconds) * time.Second,
		CompanyTTL:   time.Duration(cfg.Cache.CompanyTTLSeconds) * time.Second,
		IndicatorTTL: time.Duration(cfg.Cache.IndicatorTTLSeconds) * time.Second,
	}
}

// Analyze runs the pipeline for one symbol over one period and returns the
// assembled report.
func (t *Tracker) Analyze(ctx context.Context, symbol, period string) (rep *model.Report, err error) {
	start := time.Now()
	defer func() {
		t.Metrics.AnalysisDur.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		t.Metrics.AnalysesTotal.WithLabelValues(result).Inc()
	}()

	sym, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	days, err := model.PeriodDays(period)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] analyzing %s period=%s (%d days)", sym, period, days)

	bars, err := t.loadBars(ctx, sym, days)
	if err != nil {
		return nil, err
	}
	series, err := model.NewPriceSeries(sym, bars)
	if err != nil {
		return nil, fmt.Errorf("bars for %s: %w", sym, err)
	}

	set, err := t.computeIndicators(ctx, series, days)
	if err != nil {
		return nil, fmt.Errorf("indicators for %s: %w", sym, err)
	}

	var perf *model.PerformanceMetrics
	if p, perfErr := performance.Compute(series, t.PeriodsPerYear, t.RiskFreeRate); perfErr != nil {
		log.Printf("[WARN] performance metrics for %s: %v", sym, perfErr)
	} else {
		perf = &p
	}

	rep, err = report.Assemble(report.Input{
		Symbol:      sym,
		Period:      period,
		Series:      series,
		Indicators:  set,
		Performance: perf,
		Company:     t.loadCompany(ctx, sym),
	})
	if err != nil {
		return nil, err
	}

	t.recordGauges(rep)
	t.saveSnapshot(ctx, rep)
	t.dispatchAlerts(ctx, rep)

	log.Printf("[INFO] analysis complete: %s run=%s bars=%d price=%.2f",
		sym, rep.RunID, rep.Bars, rep.Snapshot.Price)
	return rep, nil
}

// Quote returns the latest price observation, cached briefly.
func (t *Tracker) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	sym, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return model.Quote{}, err
	}

	key := cache.QuoteKey(sym)
	var q model.Quote
	if t.cacheGet(ctx, key, "quote", &q) {
		return q, nil
	}
	for _, f := range t.fetchers() {
		q, err = f.FetchQuote(ctx, sym)
		if err != nil {
			t.Metrics.FetchRequests.WithLabelValues(f.Name(), "error").Inc()
			log.Printf("[WARN] fetch quote from %s: %v", f.Name(), err)
			continue
		}
		t.Metrics.FetchRequests.WithLabelValues(f.Name(), "ok").Inc()
		t.cachePut(ctx, key, q, t.QuoteTTL)
		return q, nil
	}
	return model.Quote{}, fmt.Errorf("no quote source could serve %s", sym)
}

// Bars returns the daily bars for a period, through the same cache and
// fallback chain the analysis uses.
func (t *Tracker) Bars(ctx context.Context, symbol, period string) ([]model.OHLCV, error) {
	sym, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	days, err := model.PeriodDays(period)
	if err != nil {
		return nil, err
	}
	return t.loadBars(ctx, sym, days)
}

// Snapshots returns stored analysis runs, newest first.
func (t *Tracker) Snapshots(ctx context.Context, symbol string, limit int) ([]store.Snapshot, error) {
	sym, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 30
	}
	return t.Store.LoadSnapshots(ctx, sym, limit)
}

func (t *Tracker) fetchers() []fetcher.Fetcher {
	out := make([]fetcher.Fetcher, 0, 2)
	if t.Primary != nil {
		out = append(out, t.Primary)
	}
	if t.Secondary != nil {
		out = append(out, t.Secondary)
	}
	return out
}

func (t *Tracker) loadBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	key := cache.BarsKey(symbol, days)
	var bars []model.OHLCV
	if t.cacheGet(ctx, key, "bars", &bars) {
		return bars, nil
	}

	for _, f := range t.fetchers() {
		fetched, err := f.FetchDailyBars(ctx, symbol, days)
		if err != nil {
			t.Metrics.FetchRequests.WithLabelValues(f.Name(), "error").Inc()
			log.Printf("[WARN] fetch bars from %s: %v", f.Name(), err)
			continue
		}
		t.Metrics.FetchRequests.WithLabelValues(f.Name(), "ok").Inc()
		if err := t.Store.SaveBars(ctx, symbol, fetched); err != nil {
			log.Printf("[WARN] persist bars for %s: %v", symbol, err)
		}
		t.cachePut(ctx, key, fetched, t.BarsTTL)
		return fetched, nil
	}

	// Offline fallback: serve what the store already has.
	stored, err := t.Store.LoadBars(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("no data source could serve %s: %w", symbol, err)
	}
	t.Metrics.FetchRequests.WithLabelValues("store", "ok").Inc()
	log.Printf("[WARN] live sources unavailable, serving %d stored bars for %s", len(stored), symbol)
	return stored, nil
}

// computeIndicators returns the cached set when it matches the series
// length, otherwise recomputes and refreshes the cache. The length check
// keeps a stale cached set from being reported against newer bars.
func (t *Tracker) computeIndicators(ctx context.Context, series *model.PriceSeries, days int) (*model.IndicatorSet, error) {
	key := cache.IndicatorsKey(series.Symbol, days, t.Indicators.Hash())

	cached := &model.IndicatorSet{}
	if t.cacheGet(ctx, key, "indicators", cached) && cached.Length == series.Len() {
		return cached, nil
	}

	set, err := indicator.ComputeAll(series, t.Indicators)
	if err != nil {
		return nil, err
	}
	t.cachePut(ctx, key, set, t.IndicatorTTL)
	return set, nil
}

// loadCompany never fails the run; a symbol without metadata reports an
// unavailable CompanyInfo.
func (t *Tracker) loadCompany(ctx context.Context, symbol string) model.CompanyInfo {
	key := cache.CompanyKey(symbol)
	var info model.CompanyInfo
	if t.cacheGet(ctx, key, "company", &info) {
		return info
	}

	for _, f := range t.fetchers() {
		fetched, err := f.FetchCompanyInfo(ctx, symbol)
		if err != nil {
			log.Printf("[WARN] fetch company info from %s: %v", f.Name(), err)
			continue
		}
		if err := t.Store.SaveCompanyInfo(ctx, fetched); err != nil {
			log.Printf("[WARN] persist company info for %s: %v", symbol, err)
		}
		t.cachePut(ctx, key, fetched, t.CompanyTTL)
		return fetched
	}

	if stored, err := t.Store.LoadCompanyInfo(ctx, symbol); err == nil {
		return stored
	}
	log.Printf("[WARN] no company info available for %s", symbol)
	return model.CompanyInfo{Symbol: symbol}
}

func (t *Tracker) recordGauges(r *model.Report) {
	if !math.IsNaN(r.Snapshot.Price) {
		t.Metrics.LastPrice.WithLabelValues(r.Symbol).Set(r.Snapshot.Price)
	}
	if !math.IsNaN(r.Performance.SharpeRatio) {
		t.Metrics.SharpeRatio.WithLabelValues(r.Symbol).Set(r.Performance.SharpeRatio)
	}
}

func (t *Tracker) saveSnapshot(ctx context.Context, r *model.Report) {
	snap := &store.Snapshot{
		RunID:            r.RunID,
		Symbol:           r.Symbol,
		Period:           r.Period,
		GeneratedAt:      r.GeneratedAt,
		Price:            r.Snapshot.Price,
		TotalReturn:      r.Performance.TotalReturn,
		AnnualizedReturn: r.Performance.AnnualizedReturn,
		Volatility:       r.Performance.Volatility,
		SharpeRatio:      r.Performance.SharpeRatio,
		MaxDrawdown:      r.Performance.MaxDrawdown,
		Indicators:       definedLatest(r.Indicators),
	}
	if err := t.Store.SaveSnapshot(ctx, snap); err != nil {
		log.Printf("[WARN] persist snapshot for %s: %v", r.Symbol, err)
	}
}

func (t *Tracker) dispatchAlerts(ctx context.Context, r *model.Report) {
	for _, a := range alert.Evaluate(r, t.AlertThreshold) {
		for _, n := range t.Notifiers {
			if err := n.Send(ctx, a); err != nil {
				log.Printf("[ERROR] send alert via %s: %v", n.Name(), err)
				continue
			}
			t.Metrics.AlertsSent.WithLabelValues(n.Name()).Inc()
		}
	}
}

// cacheGet treats every cache problem as a miss; the pipeline must work
// with a cold or broken cache.
func (t *Tracker) cacheGet(ctx context.Context, key, kind string, v interface{}) bool {
	data, err := t.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] cache get %s: %v", key, err)
		t.Metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}
	if data == nil {
		t.Metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[WARN] cache decode %s: %v", key, err)
		t.Metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false
	}
	t.Metrics.CacheHits.WithLabelValues(kind).Inc()
	return true
}

func (t *Tracker) cachePut(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARN] cache encode %s: %v", key, err)
		return
	}
	if err := t.Cache.Set(ctx, key, data, ttl); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
}

func definedLatest(set *model.IndicatorSet) map[string]float64 {
	out := make(map[string]float64, len(set.Latest))
	for name, v := range set.Latest {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[name] = v
		}
	}
	return out
}
