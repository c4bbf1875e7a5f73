// Package discord mirrors bot replies to a Discord channel through a webhook.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/onnwee/bunt/render"
)

const (
	// Default timeout for webhook requests
	defaultWebhookTimeout = 10 * time.Second

	// Max attempts when rate limited
	maxRetries = 3
)

// WebhookClient posts messages to one webhook URL.
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
	username   string
}

// NewWebhookClient creates a WebhookClient. username overrides the webhook's
// display name when non-empty.
func NewWebhookClient(webhookURL, username string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultWebhookTimeout},
		username:   username,
	}
}

type payload struct {
	render.Message
	Username string `json:"username,omitempty"`
}

// Reply implements bot.Replier.
func (c *WebhookClient) Reply(ctx context.Context, m render.Message) error {
	return c.send(ctx, payload{Message: m, Username: c.username})
}

// send posts a payload, waiting out 429 responses up to maxRetries attempts.
func (c *WebhookClient) send(ctx context.Context, p payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("webhook request failed: %w", err)
		}
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("failed to close webhook response body", slog.Any("err", cerr))
		}

		// Discord returns 204 No Content unless ?wait=true
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header.Get("Retry-After"))
			slog.Warn("discord webhook rate limited", slog.Duration("retry_after", wait), slog.Int("attempt", attempt+1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}

// retryAfter reads Discord's Retry-After header, which may carry fractional seconds.
func retryAfter(v string) time.Duration {
	if v == "" {
		return time.Second
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return time.Second
	}
	return time.Duration(secs * float64(time.Second))
}
