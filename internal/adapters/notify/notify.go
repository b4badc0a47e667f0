// Package notify delivers demand alerts to an external webhook.
//
// Delivery is fire-and-forget: a failed send is logged and counted but
// never propagates into pipeline state.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/tourintel/pkg/logger"
	"github.com/okian/tourintel/pkg/metrics"
)

// Default webhook client configuration.
const (
	defaultTimeout = 15 * time.Second

	maxResponseBytes = 1 << 20 // 1 MiB
)

// Sink receives human-readable alert text.
type Sink interface {
	// Send delivers one alert message.
	Send(ctx context.Context, text string) error
}

// Webhook posts alerts as {"content": text} JSON to a fixed URL.
type Webhook struct {
	url        string
	httpClient *http.Client
	logger     logger.Logger
}

// webhookPayload is the wire shape expected by chat-style webhooks.
type webhookPayload struct {
	Content string `json:"content"`
}

// NewWebhook creates a webhook sink with configuration options.
func NewWebhook(url string, opts ...Option) *Webhook {
	w := &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.Get().Named("notify"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Send posts the alert text. A non-2xx response or transport failure
// is returned to the caller after being logged and counted.
func (w *Webhook) Send(ctx context.Context, text string) error {
	if w.url == "" {
		return ErrNoWebhookURL
	}

	body, err := json.Marshal(webhookPayload{Content: text})
	if err != nil {
		metrics.RecordNotificationError()
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		metrics.RecordNotificationError()
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		metrics.RecordNotificationError()
		w.logger.Warn(ctx, "webhook delivery failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordNotificationError()
		w.logger.Warn(ctx, "webhook rejected alert",
			logger.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	metrics.RecordNotificationSent()
	return nil
}

// Discard is a Sink that drops every alert. Used when no webhook URL
// is configured.
type Discard struct{}

// Send implements Sink.
func (Discard) Send(context.Context, string) error {
	return nil
}
