package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// AlphaVantageFetcher implements Fetcher against the Alpha Vantage REST
// API. The free tier allows a handful of requests per minute, so calls are
// serialized and spaced at least MinInterval apart.
type AlphaVantageFetcher struct {
	BaseURL     string
	APIKey      string
	Client      *http.Client
	MinInterval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewAlphaVantageFetcher creates an Alpha Vantage fetcher. An empty baseURL
// selects the public endpoint; minInterval at zero disables throttling.
func NewAlphaVantageFetcher(baseURL, apiKey string, minInterval time.Duration) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co/query"
	}
	return &AlphaVantageFetcher{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Client:      &http.Client{Timeout: 30 * time.Second},
		MinInterval: minInterval,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// throttle blocks until the minimum spacing from the previous request has
// passed. Holding the mutex across the wait serializes concurrent callers.
func (f *AlphaVantageFetcher) throttle(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if wait := f.MinInterval - time.Since(f.last); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.last = time.Now()
	return nil
}

func (f *AlphaVantageFetcher) get(ctx context.Context, params url.Values) ([]byte, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("alphavantage: no API key configured")
	}
	if err := f.throttle(ctx); err != nil {
		return nil, err
	}
	params.Set("apikey", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}
	// Rate-limit rejections and bad symbols still come back as 200 with a
	// message body.
	var probe struct {
		Note         string `json:"Note"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		if probe.Note != "" {
			return nil, fmt.Errorf("alphavantage throttled: %s", probe.Note)
		}
		if probe.ErrorMessage != "" {
			return nil, fmt.Errorf("alphavantage api error: %s", probe.ErrorMessage)
		}
	}
	return body, nil
}

func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	if days > 100 {
		params.Set("outputsize", "full")
	} else {
		params.Set("outputsize", "compact")
	}

	body, err := f.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("alphavantage: no daily series for %s", symbol)
	}

	bars := make([]model.OHLCV, 0, len(payload.Series))
	for date, fields := range payload.Series {
		ts, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   avFloat(fields["1. open"]),
			High:   avFloat(fields["2. high"]),
			Low:    avFloat(fields["3. low"]),
			Close:  avFloat(fields["4. close"]),
			Volume: avFloat(fields["5. volume"]),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (f *AlphaVantageFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)

	body, err := f.get(ctx, params)
	if err != nil {
		return model.Quote{}, err
	}

	var payload struct {
		Quote map[string]string `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.Quote{}, fmt.Errorf("alphavantage decode: %w", err)
	}
	price := avFloat(payload.Quote["05. price"])
	if price == 0 {
		return model.Quote{}, fmt.Errorf("alphavantage: no quote for %s", symbol)
	}
	return model.Quote{
		Symbol:    symbol,
		Price:     price,
		PrevClose: avFloat(payload.Quote["08. previous close"]),
		Time:      time.Now(),
	}, nil
}

func (f *AlphaVantageFetcher) FetchCompanyInfo(ctx context.Context, symbol string) (model.CompanyInfo, error) {
	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", symbol)

	body, err := f.get(ctx, params)
	if err != nil {
		return model.CompanyInfo{}, err
	}

	var payload struct {
		Name                 string `json:"Name"`
		Sector               string `json:"Sector"`
		Industry             string `json:"Industry"`
		MarketCapitalization string `json:"MarketCapitalization"`
		Currency             string `json:"Currency"`
		Exchange             string `json:"Exchange"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.CompanyInfo{}, fmt.Errorf("alphavantage decode: %w", err)
	}
	if payload.Name == "" {
		return model.CompanyInfo{}, fmt.Errorf("alphavantage: no overview for %s", symbol)
	}
	return model.CompanyInfo{
		Symbol:    symbol,
		LongName:  payload.Name,
		Sector:    payload.Sector,
		Industry:  payload.Industry,
		MarketCap: avFloat(payload.MarketCapitalization),
		Currency:  payload.Currency,
		Exchange:  payload.Exchange,
		Available: true,
	}, nil
}

func avFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
