package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// WebhookNotifier POSTs alerts to a generic HTTP endpoint. Delivery retries
// with exponential backoff before giving up.
type WebhookNotifier struct {
	URL        string
	Client     *http.Client
	MaxRetries int

	backoffBase time.Duration
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:         url,
		Client:      &http.Client{Timeout: 10 * time.Second},
		MaxRetries:  3,
		backoffBase: time.Second,
	}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

// Send delivers the alert, retrying transient failures.
func (n *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	var lastErr error
	for i := 0; i <= n.MaxRetries; i++ {
		if err := n.post(ctx, alert); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * n.backoffBase
			log.Printf("[WARN] webhook send failed (attempt %d/%d): %v, retrying in %v",
				i+1, n.MaxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", n.MaxRetries+1, lastErr)
}

func (n *WebhookNotifier) post(ctx context.Context, alert Alert) error {
	payload := map[string]interface{}{
		"level":   string(alert.Level),
		"title":   alert.Title,
		"message": alert.Message,
		"ts":      time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
