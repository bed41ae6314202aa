// Package telemetry traces pipeline stages with OpenTelemetry and pushes run metrics to a Prometheus Pushgateway.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName = "upcoming-events"
	tracerName  = "github.com/cchalm/upcoming-events"
)

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled        bool
	OTLPEndpoint   string // Defaults to the OTEL_EXPORTER_OTLP_* environment when empty
	PushgatewayURL string // Metrics are only pushed when set
	ServiceVersion string
}

// Provider manages tracing and metrics for a single run
type Provider struct {
	// RunID identifies this invocation in spans and pushed metrics
	RunID string

	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider // nil when tracing is disabled

	metrics        *runMetrics
	pushgatewayURL string
}

// NewProvider creates a new telemetry provider
func NewProvider(ctx context.Context, config TelemetryConfig) (*Provider, error) {
	runID := uuid.New().String()

	if !config.Enabled {
		log.Printf("[telemetry] Tracing disabled")
		return newProvider(runID, noop.NewTracerProvider(), nil, config.PushgatewayURL), nil
	}

	var opts []otlptracehttp.Option
	if config.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(config.OTLPEndpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", config.ServiceVersion),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Printf("[telemetry] Tracing enabled, run %s", runID)
	return newProvider(runID, tp, tp, config.PushgatewayURL), nil
}

func newProvider(runID string, tp trace.TracerProvider, sdkTP *sdktrace.TracerProvider, pushgatewayURL string) *Provider {
	return &Provider{
		RunID:          runID,
		tracer:         tp.Tracer(tracerName),
		tracerProvider: sdkTP,
		metrics:        newRunMetrics(),
		pushgatewayURL: pushgatewayURL,
	}
}

// StartStage starts a span for one pipeline stage. The returned function ends the span, marking it failed if err is
// non-nil, and records the stage duration
func (p *Provider) StartStage(ctx context.Context, stage string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, stage, trace.WithAttributes(
		attribute.String("run.id", p.RunID),
	))

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		p.metrics.stageDuration.WithLabelValues(stage).Set(time.Since(start).Seconds())
	}
}

// RecordIssues records how many issues were fetched
func (p *Provider) RecordIssues(n int) {
	p.metrics.issuesFetched.Set(float64(n))
}

// RecordEvents records how many events were published
func (p *Provider) RecordEvents(n int) {
	p.metrics.eventsPublished.Set(float64(n))
}

// MarkSuccess records that the run completed
func (p *Provider) MarkSuccess() {
	p.metrics.lastSuccess.SetToCurrentTime()
}

// Shutdown flushes spans and pushes metrics
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.pushgatewayURL != "" {
		if err := p.metrics.push(ctx, p.pushgatewayURL, p.RunID); err != nil {
			return err
		}
		log.Printf("[telemetry] Pushed metrics to %s", p.pushgatewayURL)
	}

	if p.tracerProvider == nil {
		return nil
	}
	log.Printf("[telemetry] Shutting down tracer provider")
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}
