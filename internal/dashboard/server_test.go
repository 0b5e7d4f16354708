package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zupad/AFASX-Stock-Program/internal/cache"
	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/fetcher"
	"github.com/zupad/AFASX-Stock-Program/internal/metrics"
	"github.com/zupad/AFASX-Stock-Program/internal/model"
	"github.com/zupad/AFASX-Stock-Program/internal/store"
	"github.com/zupad/AFASX-Stock-Program/internal/tracker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dailyCycle(n int) []model.OHLCV {
	closes := []float64{100, 102, 101}
	bars := make([]model.OHLCV, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := closes[i%3]
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func newTestServer(t *testing.T, f fetcher.Fetcher) *Server {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Analysis.Period = "3mo"

	reg := prometheus.NewRegistry()
	tr := tracker.New(cfg, f, nil, store.NewNoop(), cache.NewMemoryCache(), metrics.New(reg), nil)
	hub := NewHub(tr, "AFI.AX")
	return NewServer(cfg, tr, hub, reg)
}

func doGET(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(60)})
	w := doGET(t, s, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(60)})
	w := doGET(t, s, "/api/report/AFI")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var rep reportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Symbol != "AFI.AX" {
		t.Errorf("symbol = %s, want AFI.AX", rep.Symbol)
	}
	if rep.RunID == "" {
		t.Error("run_id missing")
	}
	if rep.Bars != 60 {
		t.Errorf("bars = %d, want 60", rep.Bars)
	}
	if rep.Snapshot.Price == nil || *rep.Snapshot.Price != 101 {
		t.Errorf("snapshot.price = %v, want 101", rep.Snapshot.Price)
	}
	if math.IsNaN(rep.Indicators.LatestValue("SMA_20")) {
		t.Error("indicators.latest SMA_20 missing")
	}
	if rep.Performance.TotalReturn == nil {
		t.Error("performance.total_return should be set")
	}
	// 60 bars cannot fill a 200-bar window; the JSON must carry null, not NaN.
	if v, ok := rep.Indicators.Latest["SMA_200"]; !ok || !math.IsNaN(v) {
		t.Errorf("SMA_200 latest = %v, want NaN decoded from null", v)
	}
}

func TestReportEndpoint_BadInput(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(60)})

	if w := doGET(t, s, "/api/report/AFI?period=7w"); w.Code != http.StatusBadRequest {
		t.Errorf("bad period: status = %d, want 400", w.Code)
	}
	if w := doGET(t, s, "/api/report/A!B"); w.Code != http.StatusBadRequest {
		t.Errorf("bad symbol: status = %d, want 400", w.Code)
	}
}

func TestReportEndpoint_SourceFailure(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{Err: errors.New("offline")})
	w := doGET(t, s, "/api/report/AFI")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(40)})
	w := doGET(t, s, "/api/history/AFI?period=1mo")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Bars []model.OHLCV `json:"bars"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(body.Bars) != 40 {
		t.Errorf("bars = %d, want 40", len(body.Bars))
	}
}

func TestQuoteEndpoint(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(10)})
	w := doGET(t, s, "/api/quote/afi")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var q quoteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if q.Symbol != "AFI.AX" {
		t.Errorf("symbol = %s, want AFI.AX", q.Symbol)
	}
	if q.Price == nil || *q.Price != 100 {
		t.Errorf("price = %v, want 100", q.Price)
	}
	if q.ChangePercent == nil {
		t.Error("change_percent should be set")
	}
}

func TestSnapshotsEndpoint(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(60)})

	w := doGET(t, s, "/api/snapshots/AFI")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Snapshots []snapshotRow `json:"snapshots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode snapshots: %v", err)
	}
	if body.Snapshots == nil {
		t.Error("snapshots must be an empty list, not null")
	}

	if w := doGET(t, s, "/api/snapshots/AFI?limit=x"); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want 400", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(60)})
	doGET(t, s, "/api/report/AFI")

	w := doGET(t, s, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "afasx_analyses_total") {
		t.Error("metrics output missing afasx_analyses_total")
	}
}

func TestWebSocketStream(t *testing.T) {
	s := newTestServer(t, &fetcher.MockFetcher{DailyData: dailyCycle(60)})
	s.Hub.PollInterval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub.Run(ctx)

	ts := httptest.NewServer(s.Engine)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var ev quoteEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != "quote" {
		t.Errorf("type = %s, want quote", ev.Type)
	}
	if ev.Symbol != "AFI.AX" {
		t.Errorf("symbol = %s, want AFI.AX", ev.Symbol)
	}
	if ev.Price != 101 {
		t.Errorf("price = %v, want 101", ev.Price)
	}
}
