// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandsTotal     *prometheus.CounterVec // verb, outcome
	FetchAttempts     *prometheus.CounterVec // host
	FetchRetries      *prometheus.CounterVec // host
	FetchDecodeErrors *prometheus.CounterVec // host
	GameCacheEvents   *prometheus.CounterVec // event=hit|miss|invalidate|empty

	// Histograms (seconds)
	CommandDuration *prometheus.HistogramVec // verb

	// Gauges
	ChatConnectedGauge prometheus.Gauge // 1=connected,0=disconnected
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bunt_commands_total", Help: "Chat commands handled, by verb and outcome"}, []string{"verb", "outcome"})
		FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bunt_fetch_attempts_total", Help: "Upstream HTTP attempts"}, []string{"host"})
		FetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bunt_fetch_retries_total", Help: "Upstream HTTP attempts that failed at the transport level and were retried"}, []string{"host"})
		FetchDecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bunt_fetch_decode_errors_total", Help: "Upstream responses received but not decodable"}, []string{"host"})
		GameCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bunt_game_cache_events_total", Help: "Game resolution cache hits, misses and invalidations"}, []string{"event"})
		CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: "bunt_command_duration_seconds", Help: "Command handling duration seconds", Buckets: prometheus.DefBuckets}, []string{"verb"})
		ChatConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bunt_chat_connected", Help: "Chat connection state connected=1 disconnected=0"})
	})
}

// ObserveCommand records one handled command.
func ObserveCommand(verb, outcome string, d time.Duration) {
	Init()
	CommandsTotal.WithLabelValues(verb, outcome).Inc()
	CommandDuration.WithLabelValues(verb).Observe(d.Seconds())
}

// IncFetchAttempt counts one upstream attempt against host.
func IncFetchAttempt(host string) { Init(); FetchAttempts.WithLabelValues(host).Inc() }

// IncFetchRetry counts one retried transport failure against host.
func IncFetchRetry(host string) { Init(); FetchRetries.WithLabelValues(host).Inc() }

// IncFetchDecodeError counts one undecodable response from host.
func IncFetchDecodeError(host string) { Init(); FetchDecodeErrors.WithLabelValues(host).Inc() }

// IncGameCache counts a resolver cache event.
func IncGameCache(event string) { Init(); GameCacheEvents.WithLabelValues(event).Inc() }

// SetChatConnected sets gauge to 1 if connected else 0.
func SetChatConnected(connected bool) {
	Init()
	if connected {
		ChatConnectedGauge.Set(1)
	} else {
		ChatConnectedGauge.Set(0)
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
