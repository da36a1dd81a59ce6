package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier delivers alert transition notifications. Delivery failures are
// logged by the evaluator and never block a transition.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.Logger.Warn("alert notification",
		"alert", alert.Rule.Name,
		"status", string(alert.Status),
		"metric", alert.Rule.MetricName,
		"value", alert.CurrentValue,
		"threshold", alert.Rule.Threshold,
		"severity", string(alert.Rule.Severity),
	)
	return nil
}

// WebhookNotifier POSTs a JSON payload per transition to a collaborator
// endpoint.
type WebhookNotifier struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// NewWebhookNotifier creates a notifier for the given endpoint.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{URL: url, Client: &http.Client{}, Timeout: timeout}
}

func (n *WebhookNotifier) Notify(ctx context.Context, alert Alert) error {
	payload := map[string]any{
		"alert":     alert.Rule.Name,
		"status":    string(alert.Status),
		"severity":  string(alert.Rule.Severity),
		"metric":    alert.Rule.MetricName,
		"threshold": alert.Rule.Threshold,
		"value":     alert.CurrentValue,
		"fired_at":  alert.FiredAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// MultiNotifier fans a notification out to several notifiers, returning the
// first error after attempting all of them.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, alert Alert) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
