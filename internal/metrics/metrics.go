package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	AnalysesTotal *prometheus.CounterVec // labels: result=ok|error
	AnalysisDur   prometheus.Histogram

	FetchRequests *prometheus.CounterVec // labels: source, result=ok|error
	CacheHits     *prometheus.CounterVec // labels: kind
	CacheMisses   *prometheus.CounterVec // labels: kind

	AlertsSent *prometheus.CounterVec // labels: channel

	LastPrice   *prometheus.GaugeVec // labels: symbol
	SharpeRatio *prometheus.GaugeVec // labels: symbol
}

// New registers and returns all tracker metrics. Pass
// prometheus.DefaultRegisterer outside of tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afasx_analyses_total",
			Help: "Completed analysis runs by result",
		}, []string{"result"}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "afasx_analysis_duration_seconds",
			Help:    "Wall time of a full analysis run",
			Buckets: prometheus.DefBuckets,
		}),

		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afasx_fetch_requests_total",
			Help: "Price data fetches by source and result",
		}, []string{"source", "result"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afasx_cache_hits_total",
			Help: "Cache hits by payload kind",
		}, []string{"kind"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afasx_cache_misses_total",
			Help: "Cache misses by payload kind",
		}, []string{"kind"}),

		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afasx_alerts_sent_total",
			Help: "Alerts dispatched by channel",
		}, []string{"channel"}),

		LastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "afasx_last_price",
			Help: "Latest close price per analyzed symbol",
		}, []string{"symbol"}),
		SharpeRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "afasx_sharpe_ratio",
			Help: "Latest Sharpe ratio per analyzed symbol",
		}, []string{"symbol"}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDur,
		m.FetchRequests,
		m.CacheHits,
		m.CacheMisses,
		m.AlertsSent,
		m.LastPrice,
		m.SharpeRatio,
	)

	return m
}
