// Package telemetry provides OpenTelemetry tracing and logging setup.
package telemetry

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// maxQueueSize bounds the batch processor's span buffer. Once full, newly
// ended spans are dropped until the exporter drains the queue; export never
// applies backpressure to request handlers.
const maxQueueSize = 2048

// Config holds telemetry configuration.
type Config struct {
	ServiceName     string
	ServiceTier     string
	ServiceVersion  string
	Environment     string
	OTLPEndpoint    string
	TracingEnabled  bool
	TracingSampling float64
	LogLevel        string
	LogFormat       string
}

// Provider manages telemetry resources for one process.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	exporterConn   *grpc.ClientConn
	propagator     propagation.TextMapPropagator
	logger         *slog.Logger
}

// Setup initializes OpenTelemetry tracing and logging. The returned Provider
// is the single tracer owner for the process; handlers receive tracers from
// it explicitly rather than through package globals.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	p := &Provider{
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}

	// Setup logging
	p.logger = setupLogger(cfg)

	// Setup tracing
	if cfg.TracingEnabled {
		if err := p.setupTracing(ctx, cfg); err != nil {
			return nil, err
		}
		otel.SetTracerProvider(p.tracerProvider)
		otel.SetTextMapPropagator(p.propagator)
	}

	return p, nil
}

// Shutdown flushes any buffered spans and releases telemetry resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		err := p.tracerProvider.Shutdown(ctx)
		if p.exporterConn != nil {
			p.exporterConn.Close()
		}
		return err
	}
	return nil
}

// Logger returns the configured logger.
func (p *Provider) Logger() *slog.Logger {
	return p.logger
}

// Tracer returns a tracer for the given instrumentation name.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.TracerProvider().Tracer(name)
}

// TracerProvider returns the provider to inject into HTTP instrumentation.
// When tracing is disabled it returns a no-op provider, so callers never
// need to branch on configuration.
func (p *Provider) TracerProvider() trace.TracerProvider {
	if p.tracerProvider == nil {
		return noop.NewTracerProvider()
	}
	return p.tracerProvider
}

// Propagator returns the W3C trace-context propagator used on every hop.
func (p *Provider) Propagator() propagation.TextMapPropagator {
	return p.propagator
}

func setupLogger(cfg Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.Environment,
	)

	slog.SetDefault(logger)
	return logger
}

func (p *Provider) setupTracing(ctx context.Context, cfg Config) error {
	conn, err := grpc.NewClient(cfg.OTLPEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()), // TODO: configure TLS for production
	)
	if err != nil {
		return err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
			attribute.String("service.tier", cfg.ServiceTier),
		),
	)
	if err != nil {
		conn.Close()
		return err
	}

	sampler := sdktrace.ParentBased(
		sdktrace.TraceIDRatioBased(cfg.TracingSampling),
	)

	p.exporterConn = conn
	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxQueueSize(maxQueueSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	return nil
}

// SpanFromContext returns the span from the context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// TraceIDFromContext returns the trace ID from the context.
func TraceIDFromContext(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
