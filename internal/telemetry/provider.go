package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/pkg/config"
)

// Setup builds the recorder described by cfg. The returned shutdown func
// flushes pending spans and is safe to call when telemetry is disabled.
func Setup(ctx context.Context, cfg *config.TelemetryConfig, logger *zap.Logger) (Recorder, func(context.Context) error, error) {
	noShutdown := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return NoopRecorder{}, noShutdown, nil
	}

	tp, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, noShutdown, err
	}

	logger.Info("telemetry enabled", zap.String("endpoint", cfg.Endpoint), zap.String("session", cfg.SessionID))
	return NewOtelRecorder(tp, cfg.SessionID), tp.Shutdown, nil
}

// NewProvider creates a TracerProvider exporting over OTLP/HTTP
func NewProvider(ctx context.Context, cfg *config.TelemetryConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(stripScheme(cfg.Endpoint)),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// stripScheme removes http:// or https:// since the exporter expects host:port
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimPrefix(endpoint, "http://")
}
