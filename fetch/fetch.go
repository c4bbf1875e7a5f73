// Package fetch issues upstream GET requests that never surface transport failures:
// a failed attempt is retried after a fixed interval until it succeeds, the caller's
// context ends, or an optional attempt cap is reached. A body that arrives but cannot
// be decoded is terminal and returned as ErrDecode.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"github.com/onnwee/bunt/telemetry"
)

// DefaultRetryInterval is the fixed pause between failed attempts.
const DefaultRetryInterval = 1500 * time.Millisecond

var (
	// ErrDecode marks a response that was received but did not match the expected shape.
	ErrDecode = errors.New("decode upstream response")
	// ErrRetriesExhausted is returned only when RetryPolicy.MaxAttempts is set.
	ErrRetriesExhausted = errors.New("upstream retries exhausted")
)

// RetryPolicy controls the retry loop. There is no backoff growth.
type RetryPolicy struct {
	Interval time.Duration
	// MaxAttempts caps attempts; 0 retries forever.
	MaxAttempts int
}

// DefaultRetryPolicy retries every 1.5s with no cap.
func DefaultRetryPolicy() RetryPolicy { return RetryPolicy{Interval: DefaultRetryInterval} }

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: %s", e.URL, e.Status)
}

// Client performs resilient GETs.
type Client struct {
	HTTPClient *http.Client
	Retry      RetryPolicy
	UserAgent  string
}

// New returns a Client using the given policy and a 20s per-attempt timeout.
func New(retry RetryPolicy) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Retry:      retry,
		UserAgent:  "bunt/1.0 (+https://github.com/onnwee/bunt)",
	}
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Get returns the body of a successful GET of rawURL.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	host := hostOf(rawURL)
	for attempt := 1; ; attempt++ {
		body, err := c.attempt(ctx, rawURL, host, attempt)
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !IsRetryableError(err) {
			return nil, err
		}
		if c.Retry.MaxAttempts > 0 && attempt >= c.Retry.MaxAttempts {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}
		telemetry.IncFetchRetry(host)
		telemetry.LoggerWithCorr(ctx).Warn("upstream fetch failed; retrying",
			slog.String("host", host),
			slog.Int("attempt", attempt),
			slog.Duration("interval", c.Retry.Interval),
			slog.Any("err", err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Retry.Interval):
		}
	}
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		telemetry.IncFetchDecodeError(hostOf(rawURL))
		return fmt.Errorf("%w from %s: %w", ErrDecode, rawURL, err)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, rawURL, host string, n int) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "fetch", "GET "+host, telemetry.URLAttr(rawURL), telemetry.AttemptAttr(n))
	defer span.End()
	telemetry.IncFetchAttempt(host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		// A malformed URL never gets better by retrying.
		err = &fatalError{fmt.Errorf("create request: %w", err)}
		telemetry.RecordError(span, err)
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.http().Do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
		telemetry.RecordError(span, err)
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("read body: %w", err)
	}
	telemetry.SetSpanSuccess(span)
	return body, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
