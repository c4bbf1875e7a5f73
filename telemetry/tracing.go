package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var tracingEnabled atomic.Bool

// exporterConfig is read from the standard OTEL_* variables.
type exporterConfig struct {
	endpoint string
	insecure bool
	ratio    float64
}

// exporterConfigFromEnv returns ok=false when OTEL_EXPORTER_OTLP_ENDPOINT is unset.
// OTEL_TRACES_SAMPLER_ARG sets the sampled fraction (default 1); values outside
// 0..1 are ignored. OTEL_EXPORTER_OTLP_INSECURE=false enables TLS.
func exporterConfigFromEnv(getenv func(string) string) (exporterConfig, bool) {
	cfg := exporterConfig{endpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), insecure: true, ratio: 1}
	if cfg.endpoint == "" {
		return cfg, false
	}
	if v, err := strconv.ParseBool(getenv("OTEL_EXPORTER_OTLP_INSECURE")); err == nil {
		cfg.insecure = v
	}
	if v, err := strconv.ParseFloat(getenv("OTEL_TRACES_SAMPLER_ARG"), 64); err == nil && v >= 0 && v <= 1 {
		cfg.ratio = v
	}
	return cfg, true
}

// InitTracing installs an OTLP/gRPC tracer provider when OTEL_EXPORTER_OTLP_ENDPOINT
// is set; otherwise spans stay no-ops. The returned func flushes and stops it.
func InitTracing(serviceName, serviceVersion string) (func(), error) {
	cfg, ok := exporterConfigFromEnv(os.Getenv)
	if !ok {
		slog.Info("tracing disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.endpoint)}
	if cfg.insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.ratio))),
	)
	otel.SetTracerProvider(provider)
	tracingEnabled.Store(true)
	slog.Info("tracing initialized",
		slog.String("service", serviceName),
		slog.String("endpoint", cfg.endpoint),
		slog.Float64("sample_ratio", cfg.ratio))

	return func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("tracer provider shutdown failed", slog.Any("err", err))
		}
		tracingEnabled.Store(false)
	}, nil
}

// IsTracingEnabled reports whether an exporter is installed.
func IsTracingEnabled() bool { return tracingEnabled.Load() }

// StartSpan starts a span tagged with the correlation id carried by ctx.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if corr := GetCorrelation(ctx); corr != "" {
		attrs = append(attrs, attribute.String("bunt.correlation_id", corr))
	}
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks span failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanSuccess marks span OK.
func SetSpanSuccess(span trace.Span) { span.SetStatus(codes.Ok, "") }

// CommandAttr tags a span with the chat command verb.
func CommandAttr(verb string) attribute.KeyValue { return attribute.String("bunt.command", verb) }

// URLAttr tags a span with the upstream URL.
func URLAttr(u string) attribute.KeyValue { return attribute.String("http.url", u) }

// AttemptAttr tags a span with the fetch attempt number.
func AttemptAttr(n int) attribute.KeyValue { return attribute.Int("bunt.fetch.attempt", n) }

// HTTPMethodAttr tags an inbound request span with its method.
func HTTPMethodAttr(method string) attribute.KeyValue { return attribute.String("http.method", method) }

// HTTPRouteAttr tags an inbound request span with its path.
func HTTPRouteAttr(route string) attribute.KeyValue { return attribute.String("http.route", route) }

// SetSpanHTTPStatus records the response status and marks 4xx/5xx spans as errors.
func SetSpanHTTPStatus(span trace.Span, code int) {
	span.SetAttributes(attribute.Int("http.status_code", code))
	if code >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", code))
	}
}
