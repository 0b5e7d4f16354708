package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zupad/AFASX-Stock-Program/internal/indicator"
	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		Symbol          string  `yaml:"symbol"`
		Period          string  `yaml:"period"`
		PeriodsPerYear  int     `yaml:"periods_per_year"`
		RiskFreeRate    float64 `yaml:"risk_free_rate"`
		SMAWindows      []int   `yaml:"sma_windows"`
		EMAWindows      []int   `yaml:"ema_windows"`
		RSIWindow       int     `yaml:"rsi_window"`
		MACDFast        int     `yaml:"macd_fast"`
		MACDSlow        int     `yaml:"macd_slow"`
		MACDSignal      int     `yaml:"macd_signal"`
		BollingerWindow int     `yaml:"bollinger_window"`
		BollingerK      float64 `yaml:"bollinger_k"`
	} `yaml:"analysis"`
	DataSource struct {
		YahooBaseURL      string `yaml:"yahoo_base_url"`
		AlphaVantageURL   string `yaml:"alpha_vantage_url"`
		AlphaVantageKey   string `yaml:"alpha_vantage_key"`
		MinRequestSeconds int    `yaml:"min_request_seconds"`
	} `yaml:"data_source"`
	Database struct {
		Driver      string `yaml:"driver"` // sqlite, postgres or none
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Cache struct {
		Backend             string `yaml:"backend"` // redis, memory or none
		RedisAddr           string `yaml:"redis_addr"`
		RedisPassword       string `yaml:"redis_password"`
		RedisDB             int    `yaml:"redis_db"`
		QuoteTTLSeconds     int    `yaml:"quote_ttl_seconds"`
		BarsTTLSeconds      int    `yaml:"bars_ttl_seconds"`
		CompanyTTLSeconds   int    `yaml:"company_ttl_seconds"`
		IndicatorTTLSeconds int    `yaml:"indicator_ttl_seconds"`
	} `yaml:"cache"`
	Alerts struct {
		PriceChangeThreshold float64 `yaml:"price_change_threshold"` // percent
		WebhookURL           string  `yaml:"webhook_url"`
	} `yaml:"alerts"`
	Dashboard struct {
		ListenAddr   string   `yaml:"listen_addr"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"dashboard"`
	Schedule struct {
		WatchCron string `yaml:"watch_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and fills defaults. A missing file is fine; defaults cover a
// local run against Yahoo with the in-process cache.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Analysis.Symbol = v
	}
	if v := os.Getenv("PERIOD"); v != "" {
		cfg.Analysis.Period = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.DataSource.AlphaVantageKey = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = n
		}
	}
	if v := os.Getenv("ALERT_WEBHOOK_URL"); v != "" {
		cfg.Alerts.WebhookURL = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Dashboard.ListenAddr = v
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		cfg.Schedule.WatchCron = v
	}

	// Defaults
	if cfg.Analysis.Symbol == "" {
		cfg.Analysis.Symbol = "AFI"
	}
	if cfg.Analysis.Period == "" {
		cfg.Analysis.Period = "1y"
	}
	if cfg.Analysis.PeriodsPerYear == 0 {
		cfg.Analysis.PeriodsPerYear = 252
	}
	if cfg.Analysis.SMAWindows == nil {
		cfg.Analysis.SMAWindows = []int{20, 50, 200}
	}
	if cfg.Analysis.EMAWindows == nil {
		cfg.Analysis.EMAWindows = []int{12, 26}
	}
	if cfg.Analysis.RSIWindow == 0 {
		cfg.Analysis.RSIWindow = indicator.DefaultRSIWindow
	}
	if cfg.Analysis.MACDFast == 0 && cfg.Analysis.MACDSlow == 0 && cfg.Analysis.MACDSignal == 0 {
		cfg.Analysis.MACDFast = indicator.DefaultMACDFast
		cfg.Analysis.MACDSlow = indicator.DefaultMACDSlow
		cfg.Analysis.MACDSignal = indicator.DefaultMACDSignal
	}
	if cfg.Analysis.BollingerWindow == 0 {
		cfg.Analysis.BollingerWindow = indicator.DefaultBollingerWindow
	}
	if cfg.Analysis.BollingerK == 0 {
		cfg.Analysis.BollingerK = indicator.DefaultBollingerK
	}
	if cfg.DataSource.YahooBaseURL == "" {
		cfg.DataSource.YahooBaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.DataSource.AlphaVantageURL == "" {
		cfg.DataSource.AlphaVantageURL = "https://www.alphavantage.co/query"
	}
	if cfg.DataSource.MinRequestSeconds == 0 {
		cfg.DataSource.MinRequestSeconds = 12
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/afasx.db"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.QuoteTTLSeconds == 0 {
		cfg.Cache.QuoteTTLSeconds = 60
	}
	if cfg.Cache.BarsTTLSeconds == 0 {
		cfg.Cache.BarsTTLSeconds = 3600
	}
	if cfg.Cache.CompanyTTLSeconds == 0 {
		cfg.Cache.CompanyTTLSeconds = 86400
	}
	if cfg.Cache.IndicatorTTLSeconds == 0 {
		cfg.Cache.IndicatorTTLSeconds = 1800
	}
	if cfg.Alerts.PriceChangeThreshold == 0 {
		cfg.Alerts.PriceChangeThreshold = 5.0
	}
	if cfg.Dashboard.ListenAddr == "" {
		cfg.Dashboard.ListenAddr = ":8080"
	}
	if len(cfg.Dashboard.AllowOrigins) == 0 {
		cfg.Dashboard.AllowOrigins = []string{"*"}
	}
	if cfg.Schedule.WatchCron == "" {
		cfg.Schedule.WatchCron = "0 0 18 * * 1-5"
	}

	return cfg, nil
}

// IndicatorConfig maps the analysis section onto the engine's settings.
func (c *Config) IndicatorConfig() indicator.Config {
	return indicator.Config{
		SMAWindows:      c.Analysis.SMAWindows,
		EMAWindows:      c.Analysis.EMAWindows,
		RSIWindow:       c.Analysis.RSIWindow,
		MACDFast:        c.Analysis.MACDFast,
		MACDSlow:        c.Analysis.MACDSlow,
		MACDSignal:      c.Analysis.MACDSignal,
		BollingerWindow: c.Analysis.BollingerWindow,
		BollingerK:      c.Analysis.BollingerK,
	}
}

// Validate checks that the configuration is runnable.
func (c *Config) Validate() error {
	if c.Analysis.Symbol == "" {
		return fmt.Errorf("analysis.symbol is required")
	}
	if _, err := model.PeriodDays(c.Analysis.Period); err != nil {
		return fmt.Errorf("analysis.period: %w", err)
	}
	if c.Analysis.PeriodsPerYear <= 0 {
		return fmt.Errorf("analysis.periods_per_year must be positive")
	}
	if err := c.IndicatorConfig().Validate(); err != nil {
		return fmt.Errorf("analysis windows: %w", err)
	}
	switch c.Database.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or none, got %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("cache.backend must be redis, memory or none, got %q", c.Cache.Backend)
	}
	if c.Alerts.PriceChangeThreshold < 0 {
		return fmt.Errorf("alerts.price_change_threshold must not be negative")
	}
	return nil
}
