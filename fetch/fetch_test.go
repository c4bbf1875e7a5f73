package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func zeroDelay(max int) RetryPolicy { return RetryPolicy{Interval: 0, MaxAttempts: max} }

func TestGetRetriesUntilSuccess(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 4 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New(zeroDelay(0))
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if !out.OK {
		t.Errorf("decoded ok = false, want true")
	}
	if got := atomic.LoadInt32(&hits); got != 4 {
		t.Errorf("hits = %d, want 4", got)
	}
}

func TestGetJSONDecodeErrorNotRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	c := New(zeroDelay(0))
	var out map[string]any
	err := c.GetJSON(context.Background(), server.URL, &out)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("GetJSON() error = %v, want ErrDecode", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("hits = %d, want exactly 1 (decode errors are terminal)", got)
	}
}

func TestGetExhaustsBoundedPolicy(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(zeroDelay(3))
	_, err := c.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Get() error = %v, want ErrRetriesExhausted", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Errorf("Get() error = %v, want wrapped StatusError 502", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("hits = %d, want 3", got)
	}
}

func TestGetRetriesConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	c := New(zeroDelay(2))
	_, err := c.Get(context.Background(), addr)
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Get() error = %v, want ErrRetriesExhausted", err)
	}
}

func TestGetStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(RetryPolicy{Interval: 10 * time.Millisecond})
	_, err := c.Get(ctx, server.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestGetWaitsFixedInterval(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := New(RetryPolicy{Interval: 20 * time.Millisecond})
	start := time.Now()
	body, err := c.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 2 intervals", elapsed)
	}
}

func TestGetMalformedURLIsFatal(t *testing.T) {
	c := New(zeroDelay(0))
	_, err := c.Get(context.Background(), "http://[::1]:namedport")
	if err == nil {
		t.Fatal("Get() error = nil, want error")
	}
	if errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("malformed URL should fail without retry, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"status", &StatusError{StatusCode: 503}, ErrorClassRetryable},
		{"not found status", &StatusError{StatusCode: 404}, ErrorClassRetryable},
		{"plain network", errors.New("connection reset by peer"), ErrorClassRetryable},
		{"decode", fmt.Errorf("%w: bad", ErrDecode), ErrorClassFatal},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), ErrorClassFatal},
		{"fatal marker", &fatalError{errors.New("bad url")}, ErrorClassFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
			if got := IsRetryableError(tt.err); got != (tt.want == ErrorClassRetryable) {
				t.Errorf("IsRetryableError(%v) = %v", tt.err, got)
			}
		})
	}
}

func TestErrorClassString(t *testing.T) {
	if ErrorClassRetryable.String() != "retryable" || ErrorClassFatal.String() != "fatal" || ErrorClass(9).String() != "unknown" {
		t.Error("unexpected ErrorClass names")
	}
}
