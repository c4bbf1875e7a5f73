package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestExporterConfigFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantOK   bool
		insecure bool
		ratio    float64
	}{
		{"disabled", map[string]string{}, false, true, 1},
		{"defaults", map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "otel:4317"}, true, true, 1},
		{"tls and ratio", map[string]string{
			"OTEL_EXPORTER_OTLP_ENDPOINT": "otel:4317",
			"OTEL_EXPORTER_OTLP_INSECURE": "false",
			"OTEL_TRACES_SAMPLER_ARG":     "0.25",
		}, true, false, 0.25},
		{"ratio out of range", map[string]string{
			"OTEL_EXPORTER_OTLP_ENDPOINT": "otel:4317",
			"OTEL_TRACES_SAMPLER_ARG":     "3",
		}, true, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, ok := exporterConfigFromEnv(func(k string) string { return tt.env[k] })
			if ok != tt.wantOK || cfg.insecure != tt.insecure || cfg.ratio != tt.ratio {
				t.Errorf("got %+v ok=%v", cfg, ok)
			}
		})
	}
}

func TestInitTracingDisabled(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	shutdown, err := InitTracing("bunt", "test")
	if err != nil {
		t.Fatal(err)
	}
	shutdown()
	if IsTracingEnabled() {
		t.Fatal("tracing should be disabled without an endpoint")
	}
}

func TestSpanHelpers(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")

	_, span := tracer.Start(WithCorrelation(context.Background(), "abc"), "ok")
	SetSpanSuccess(span)
	span.End()

	_, span = tracer.Start(context.Background(), "failed")
	RecordError(span, nil)
	RecordError(span, errors.New("boom"))
	span.End()

	_, span = tracer.Start(context.Background(), "http")
	SetSpanHTTPStatus(span, 503)
	span.End()

	ended := rec.Ended()
	if len(ended) != 3 {
		t.Fatalf("ended %d spans", len(ended))
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("first span status = %v", ended[0].Status())
	}
	if ended[1].Status().Code != codes.Error || ended[1].Status().Description != "boom" {
		t.Errorf("second span status = %v", ended[1].Status())
	}
	if ended[2].Status().Description != "HTTP 503" {
		t.Errorf("third span status = %v", ended[2].Status())
	}
}
