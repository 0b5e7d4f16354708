package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zupad/AFASX-Stock-Program/internal/alert"
	"github.com/zupad/AFASX-Stock-Program/internal/cache"
	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/fetcher"
	"github.com/zupad/AFASX-Stock-Program/internal/metrics"
	"github.com/zupad/AFASX-Stock-Program/internal/model"
	"github.com/zupad/AFASX-Stock-Program/internal/store"
)

type fakeStore struct {
	bars      map[string][]model.OHLCV
	company   map[string]model.CompanyInfo
	snapshots []store.Snapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bars:    make(map[string][]model.OHLCV),
		company: make(map[string]model.CompanyInfo),
	}
}

func (s *fakeStore) SaveBars(_ context.Context, symbol string, bars []model.OHLCV) error {
	s.bars[symbol] = bars
	return nil
}

func (s *fakeStore) LoadBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	bars, ok := s.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: bars for %s", store.ErrNotFound, symbol)
	}
	return bars, nil
}

func (s *fakeStore) SaveCompanyInfo(_ context.Context, info model.CompanyInfo) error {
	s.company[info.Symbol] = info
	return nil
}

func (s *fakeStore) LoadCompanyInfo(_ context.Context, symbol string) (model.CompanyInfo, error) {
	info, ok := s.company[symbol]
	if !ok {
		return model.CompanyInfo{}, fmt.Errorf("%w: company info for %s", store.ErrNotFound, symbol)
	}
	return info, nil
}

func (s *fakeStore) SaveSnapshot(_ context.Context, snap *store.Snapshot) error {
	s.snapshots = append(s.snapshots, *snap)
	return nil
}

func (s *fakeStore) LoadSnapshots(_ context.Context, symbol string, limit int) ([]store.Snapshot, error) {
	return s.snapshots, nil
}

func (s *fakeStore) Close() error { return nil }

type countingFetcher struct {
	fetcher.Fetcher
	barCalls   int
	quoteCalls int
}

func (c *countingFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	c.barCalls++
	return c.Fetcher.FetchDailyBars(ctx, symbol, days)
}

func (c *countingFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	c.quoteCalls++
	return c.Fetcher.FetchQuote(ctx, symbol)
}

type recordingNotifier struct {
	alerts []alert.Alert
}

func (r *recordingNotifier) Send(_ context.Context, a alert.Alert) error {
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recordingNotifier) Name() string { return "record" }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Alerts.PriceChangeThreshold = 5
	return cfg
}

func newTestTracker(t *testing.T, primary, secondary fetcher.Fetcher, st store.Store) (*Tracker, *recordingNotifier) {
	t.Helper()
	rec := &recordingNotifier{}
	tr := New(testConfig(t), primary, secondary, st, cache.NewMemoryCache(),
		metrics.New(prometheus.NewRegistry()), []alert.Notifier{rec})
	return tr, rec
}

// cycleBars repeats closes 100, 102, 101 so the RSI stays in the neutral
// zone and the last close sits strictly inside the high-low range.
func cycleBars(n int) []model.OHLCV {
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

func TestAnalyze_FullRun(t *testing.T) {
	st := newFakeStore()
	tr, rec := newTestTracker(t, &fetcher.MockFetcher{DailyData: cycleBars(60)}, nil, st)

	rep, err := tr.Analyze(context.Background(), "AFI", "3mo")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if rep.Symbol != "AFI.AX" {
		t.Errorf("symbol = %s, want AFI.AX", rep.Symbol)
	}
	if rep.Bars != 60 {
		t.Errorf("bars = %d, want 60", rep.Bars)
	}
	if rep.RunID == "" {
		t.Error("run id should be assigned")
	}
	if rep.Snapshot.Price != 101 {
		t.Errorf("price = %v, want 101", rep.Snapshot.Price)
	}
	if math.IsNaN(rep.Indicators.LatestValue("SMA_20")) {
		t.Error("SMA_20 should be defined on 60 bars")
	}
	if math.IsNaN(rep.Performance.TotalReturn) {
		t.Error("performance should be computed")
	}
	if !rep.Company.Available {
		t.Error("company info should come from the fetcher")
	}

	// Side effects: bars and one snapshot persisted, no alerts for calm data.
	if len(st.bars["AFI.AX"]) != 60 {
		t.Errorf("store holds %d bars, want 60", len(st.bars["AFI.AX"]))
	}
	if len(st.snapshots) != 1 {
		t.Fatalf("store holds %d snapshots, want 1", len(st.snapshots))
	}
	if st.snapshots[0].RunID != rep.RunID {
		t.Errorf("snapshot run id %s != report run id %s", st.snapshots[0].RunID, rep.RunID)
	}
	if _, ok := st.snapshots[0].Indicators["SMA_200"]; ok {
		t.Error("undefined indicators should be left out of the snapshot")
	}
	if len(rec.alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", rec.alerts)
	}
}

func TestAnalyze_SecondRunHitsCache(t *testing.T) {
	cf := &countingFetcher{Fetcher: &fetcher.MockFetcher{DailyData: cycleBars(60)}}
	tr, _ := newTestTracker(t, cf, nil, newFakeStore())
	ctx := context.Background()

	if _, err := tr.Analyze(ctx, "AFI", "3mo"); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if _, err := tr.Analyze(ctx, "AFI", "3mo"); err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	if cf.barCalls != 1 {
		t.Errorf("expected 1 bar fetch across two runs, got %d", cf.barCalls)
	}
}

func TestAnalyze_FallsBackToSecondary(t *testing.T) {
	primary := &fetcher.MockFetcher{Err: errors.New("primary down")}
	secondary := &fetcher.MockFetcher{DailyData: cycleBars(40)}
	tr, _ := newTestTracker(t, primary, secondary, newFakeStore())

	rep, err := tr.Analyze(context.Background(), "AFI", "1mo")
	if err != nil {
		t.Fatalf("analyze with secondary: %v", err)
	}
	if rep.Bars != 40 {
		t.Errorf("bars = %d, want 40 from the secondary source", rep.Bars)
	}
}

func TestAnalyze_ServesStoredBarsWhenSourcesFail(t *testing.T) {
	st := newFakeStore()
	st.bars["AFI.AX"] = cycleBars(30)
	tr, _ := newTestTracker(t, &fetcher.MockFetcher{Err: errors.New("offline")}, nil, st)

	rep, err := tr.Analyze(context.Background(), "AFI", "1mo")
	if err != nil {
		t.Fatalf("analyze from store: %v", err)
	}
	if rep.Bars != 30 {
		t.Errorf("bars = %d, want 30 stored bars", rep.Bars)
	}
	if rep.Company.Available {
		t.Error("no company source was available")
	}
}

func TestAnalyze_FailsWhenNothingCanServe(t *testing.T) {
	tr, rec := newTestTracker(t, &fetcher.MockFetcher{Err: errors.New("offline")}, nil, newFakeStore())

	_, err := tr.Analyze(context.Background(), "AFI", "1mo")
	if err == nil {
		t.Fatal("expected an error when no source has data")
	}
	if len(rec.alerts) != 0 {
		t.Errorf("failed runs must not alert, got %+v", rec.alerts)
	}
}

func TestAnalyze_RejectsBadInput(t *testing.T) {
	tr, _ := newTestTracker(t, &fetcher.MockFetcher{}, nil, newFakeStore())
	ctx := context.Background()

	if _, err := tr.Analyze(ctx, "BAD SYM", "1y"); !errors.Is(err, model.ErrInvalidSymbol) {
		t.Errorf("expected invalid symbol, got %v", err)
	}
	if _, err := tr.Analyze(ctx, "AFI", "7w"); !errors.Is(err, model.ErrInvalidPeriod) {
		t.Errorf("expected invalid period, got %v", err)
	}
}

func TestAnalyze_DispatchesAlertsOnBigMove(t *testing.T) {
	bars := cycleBars(60)
	last := &bars[59]
	prev := bars[58].Close
	last.Close = prev * 1.06
	last.High = last.Close
	tr, rec := newTestTracker(t, &fetcher.MockFetcher{DailyData: bars}, nil, newFakeStore())

	if _, err := tr.Analyze(context.Background(), "AFI", "3mo"); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(rec.alerts) != 2 {
		t.Fatalf("expected price move and 52-week high alerts, got %+v", rec.alerts)
	}
	if !strings.Contains(rec.alerts[0].Title, "moved up 6.00%") {
		t.Errorf("first alert title = %q", rec.alerts[0].Title)
	}
	if !strings.Contains(rec.alerts[1].Title, "52-week high") {
		t.Errorf("second alert title = %q", rec.alerts[1].Title)
	}
}

func TestQuote_CachesResult(t *testing.T) {
	cf := &countingFetcher{Fetcher: &fetcher.MockFetcher{DailyData: cycleBars(10)}}
	tr, _ := newTestTracker(t, cf, nil, newFakeStore())
	ctx := context.Background()

	q1, err := tr.Quote(ctx, "afi")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q1.Symbol != "AFI.AX" {
		t.Errorf("symbol = %s, want AFI.AX", q1.Symbol)
	}
	if q1.Price != 100 || q1.PrevClose != 101 {
		t.Errorf("quote = %+v, want price 100 prev 101", q1)
	}

	q2, err := tr.Quote(ctx, "AFI")
	if err != nil {
		t.Fatalf("cached quote: %v", err)
	}
	if q2.Price != q1.Price {
		t.Errorf("cached price %v differs from fetched %v", q2.Price, q1.Price)
	}
	if cf.quoteCalls != 1 {
		t.Errorf("expected 1 quote fetch, got %d", cf.quoteCalls)
	}
}

func TestSnapshots_NormalizesSymbol(t *testing.T) {
	st := newFakeStore()
	st.snapshots = []store.Snapshot{{RunID: "run-1", Symbol: "AFI.AX"}}
	tr, _ := newTestTracker(t, &fetcher.MockFetcher{}, nil, st)

	snaps, err := tr.Snapshots(context.Background(), "afi", 0)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].RunID != "run-1" {
		t.Errorf("snapshots = %+v", snaps)
	}
}
