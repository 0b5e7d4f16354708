package model

import "time"

// PriceSnapshot captures the latest traded state shown in report headers.
// Unavailable numeric fields carry NaN.
type PriceSnapshot struct {
	Price         float64
	Change        float64
	ChangePercent float64
	High52w       float64
	Low52w        float64
	Volume        float64
	AsOf          time.Time
}

// PerformanceMetrics summarizes return and risk over the analyzed period.
// Returns and volatility are fractions (0.05 means 5%); the Sharpe ratio is
// a unitless number. Sharpe is NaN when volatility is zero.
type PerformanceMetrics struct {
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	SharpeRatio      float64
	MaxDrawdown      float64
	MeanReturn       float64
	ReturnStdDev     float64
	Periods          int
}

// CompanyInfo carries descriptive metadata for a listed company. Available
// is false when no metadata source could serve the symbol; string fields may
// individually be empty even when Available is true.
type CompanyInfo struct {
	Symbol    string  `json:"symbol"`
	LongName  string  `json:"long_name"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	MarketCap float64 `json:"market_cap"`
	Currency  string  `json:"currency"`
	Exchange  string  `json:"exchange"`
	Available bool    `json:"available"`
}

// Report is the assembled result of one analysis run. It is constructed once
// and never mutated afterwards; every field is either a computed value or an
// explicit unavailable marker, so renderers can rely on the full shape.
type Report struct {
	RunID           string
	GeneratedAt     time.Time
	Symbol          string
	DisplayName     string
	Period          string
	Bars            int
	Snapshot        PriceSnapshot
	Indicators      *IndicatorSet
	Performance     PerformanceMetrics
	Company         CompanyInfo
	Classifications map[string]string
}
