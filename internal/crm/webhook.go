package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/asjidimtiaz/leadqual/internal/domain"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookSink posts each lead as a JSON document to an external endpoint.
type WebhookSink struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookSink creates a webhook sink. A zero timeout uses the default.
func NewWebhookSink(url, secret string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookSink{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
	}
}

func (w *WebhookSink) Name() string { return "webhook" }

// Create posts the lead. Any non-2xx response is an error.
func (w *WebhookSink) Create(ctx context.Context, lead domain.Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encoding lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set("X-Webhook-Secret", w.secret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting lead: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
