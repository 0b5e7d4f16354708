package alert

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

func reportFixture(t *testing.T, changePercent float64) *model.Report {
	t.Helper()
	set := model.NewIndicatorSet(1)
	if err := set.Add("RSI_14", []float64{55}); err != nil {
		t.Fatalf("add series: %v", err)
	}
	return &model.Report{
		Symbol:      "AFI.AX",
		DisplayName: "Australian Foundation Investment Company",
		Snapshot: model.PriceSnapshot{
			Price:         7.45,
			Change:        7.45 * changePercent,
			ChangePercent: changePercent,
			High52w:       8.00,
			Low52w:        6.50,
		},
		Indicators:      set,
		Classifications: map[string]string{"RSI_14": "Neutral"},
	}
}

func TestEvaluate_PriceMove(t *testing.T) {
	tests := []struct {
		name          string
		changePercent float64
		threshold     float64
		wantCount     int
		wantLevel     Level
		wantTitle     string
	}{
		{"small move ignored", 0.01, 5, 0, "", ""},
		{"gain over threshold", 0.06, 5, 1, LevelWarning, "up 6.00%"},
		{"loss at double threshold", -0.12, 5, 1, LevelCritical, "down 12.00%"},
		{"disabled threshold", 0.50, 0, 0, "", ""},
		{"undefined change", math.NaN(), 5, 0, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := Evaluate(reportFixture(t, tt.changePercent), tt.threshold)
			if len(alerts) != tt.wantCount {
				t.Fatalf("got %d alerts, want %d: %+v", len(alerts), tt.wantCount, alerts)
			}
			if tt.wantCount == 0 {
				return
			}
			if alerts[0].Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", alerts[0].Level, tt.wantLevel)
			}
			if !strings.Contains(alerts[0].Title, tt.wantTitle) {
				t.Errorf("title %q missing %q", alerts[0].Title, tt.wantTitle)
			}
		})
	}
}

func TestEvaluate_RSIZones(t *testing.T) {
	r := reportFixture(t, 0)
	r.Classifications["RSI_14"] = "Overbought"
	r.Indicators.Latest["RSI_14"] = 78.4

	alerts := Evaluate(r, 5)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(alerts), alerts)
	}
	if alerts[0].Level != LevelInfo {
		t.Errorf("level = %s, want %s", alerts[0].Level, LevelInfo)
	}
	if !strings.Contains(alerts[0].Title, "overbought") {
		t.Errorf("title %q should mention overbought", alerts[0].Title)
	}
	if !strings.Contains(alerts[0].Message, "78.4") {
		t.Errorf("message %q should carry the reading", alerts[0].Message)
	}
}

func TestEvaluate_WeekRange(t *testing.T) {
	high := reportFixture(t, 0)
	high.Snapshot.Price = high.Snapshot.High52w

	alerts := Evaluate(high, 5)
	if len(alerts) != 1 || !strings.Contains(alerts[0].Title, "52-week high") {
		t.Errorf("expected a 52-week high alert, got %+v", alerts)
	}

	low := reportFixture(t, 0)
	low.Snapshot.Price = low.Snapshot.Low52w

	alerts = Evaluate(low, 5)
	if len(alerts) != 1 || !strings.Contains(alerts[0].Title, "52-week low") {
		t.Errorf("expected a 52-week low alert, got %+v", alerts)
	}
}

func TestEvaluate_OrderIsStable(t *testing.T) {
	r := reportFixture(t, 0.07)
	r.Classifications["RSI_14"] = "Oversold"
	r.Indicators.Latest["RSI_14"] = 22.0
	r.Snapshot.Price = r.Snapshot.High52w

	alerts := Evaluate(r, 5)
	if len(alerts) != 3 {
		t.Fatalf("got %d alerts, want 3: %+v", len(alerts), alerts)
	}
	if !strings.Contains(alerts[0].Title, "moved up") {
		t.Errorf("first alert should be the price move, got %q", alerts[0].Title)
	}
	if !strings.Contains(alerts[1].Title, "oversold") {
		t.Errorf("second alert should be the RSI zone, got %q", alerts[1].Title)
	}
	if !strings.Contains(alerts[2].Title, "52-week high") {
		t.Errorf("third alert should be the range extreme, got %q", alerts[2].Title)
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier()
	if n.Name() != "log" {
		t.Errorf("name = %q", n.Name())
	}
	if err := n.Send(context.Background(), Alert{Level: LevelInfo, Title: "t", Message: "m"}); err != nil {
		t.Errorf("log send should not fail: %v", err)
	}
}

func TestWebhookNotifier_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Send(context.Background(), Alert{Level: LevelWarning, Title: "big move", Message: "details"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if got["level"] != "WARNING" || got["title"] != "big move" || got["message"] != "details" {
		t.Errorf("payload mismatch: %v", got)
	}
	if _, ok := got["ts"]; !ok {
		t.Error("payload missing timestamp")
	}
}

func TestWebhookNotifier_RetriesOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	n.backoffBase = 5 * time.Millisecond

	if err := n.Send(context.Background(), Alert{Title: "t"}); err != nil {
		t.Fatalf("send should succeed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestWebhookNotifier_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	n.MaxRetries = 1
	n.backoffBase = time.Millisecond

	err := n.Send(context.Background(), Alert{Title: "t"})
	if err == nil || !strings.Contains(err.Error(), "retries exhausted") {
		t.Errorf("expected exhausted retries, got %v", err)
	}
}

func TestWebhookNotifier_HonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	n.backoffBase = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := n.Send(ctx, Alert{Title: "t"})
	if err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("send should give up when the context ends, not wait out the backoff")
	}
}
