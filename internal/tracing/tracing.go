// Package tracing sets up OTLP trace export and small helpers for span
// creation. When disabled, all helpers still work against a no-op tracer.
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const serviceName = "soriva-search"

var tracer oteltrace.Tracer = otel.Tracer(serviceName)

// Config holds tracing configuration.
type Config struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Initialize wires the global tracer provider. Safe to skip entirely; the
// package-level helpers then produce no-op spans.
func Initialize(cfg Config, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Info("tracing disabled")
		return nil
	}
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = "localhost:4317"
	}

	exporter, err := otlptracegrpc.New(
		context.Background(),
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer(serviceName)

	logger.Info("tracing initialized", zap.String("endpoint", cfg.OTLPEndpoint))
	return nil
}

// StartSearchSpan opens the root span for one search request.
func StartSearchSpan(ctx context.Context, requestID string) (context.Context, oteltrace.Span) {
	ctx, span := tracer.Start(ctx, "search")
	span.SetAttributes(attribute.String("soriva.request_id", requestID))
	return ctx, span
}

// StartProviderSpan opens a span for one provider call.
func StartProviderSpan(ctx context.Context, provider string) (context.Context, oteltrace.Span) {
	ctx, span := tracer.Start(ctx, "provider."+provider)
	span.SetAttributes(attribute.String("soriva.provider", provider))
	return ctx, span
}

// InjectTraceparent adds a W3C traceparent header to an outgoing request so
// the grounded-answer service can join the trace.
func InjectTraceparent(ctx context.Context, req *http.Request) {
	sc := oteltrace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return
	}
	req.Header.Set("traceparent", fmt.Sprintf("00-%s-%s-%02x",
		sc.TraceID().String(), sc.SpanID().String(), sc.TraceFlags()))
}
