package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	traceSpan "go.opentelemetry.io/otel/trace"
)

// Logger defines the logging contract of the tracer package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// instrumentationName names the tracer handed to the cluster operations.
const instrumentationName = "github.com/Aleph-Alpha/clusterops"

// Tracer wraps an OpenTelemetry TracerProvider and provides helpers for spans and
// trace context propagation. It is safe for concurrent use.
type Tracer struct {
	tracer *trace.TracerProvider
	logger Logger
}

// NewClient creates the tracer provider, installs it as the global provider together
// with the W3C trace context and baggage propagators, and sets up the OTLP HTTP exporter
// when cfg.EnableExport is set.
//
// Example:
//
//	t, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "cluster-ops",
//	    AppEnv:       "production",
//	    EnableExport: true,
//	    Endpoint:     "otel-collector:4318",
//	}, log)
//	ops := cluster.NewOperations(dir, nil, log).WithTracer(t.Tracer())
func NewClient(cfg Config, logger Logger) (*Tracer, error) {
	var exporter trace.SpanExporter
	if cfg.EnableExport {
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
		if err != nil {
			return nil, fmt.Errorf("cannot initiate trace exporter: %w", err)
		}
		exporter = exp
	}
	return NewClientWithExporter(cfg, exporter, logger), nil
}

// NewClientWithExporter is NewClient with a caller supplied exporter. A nil exporter
// records spans without exporting them.
func NewClientWithExporter(cfg Config, exporter trace.SpanExporter, logger Logger) *Tracer {
	if logger == nil {
		logger = nopLogger{}
	}

	options := []trace.TracerProviderOption{
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.AppEnv),
			attribute.String("environment", cfg.AppEnv),
		)),
	}
	if exporter != nil {
		options = append(options, trace.WithBatcher(exporter))
	}
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		options = append(options, trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRatio))))
	}

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator())

	logger.Info("tracer initialized", nil, map[string]interface{}{
		"service":      cfg.ServiceName,
		"environment":  cfg.AppEnv,
		"export":       exporter != nil,
		"sample_ratio": cfg.SampleRatio,
	})
	return &Tracer{tracer: tp, logger: logger}
}

// Tracer returns the named tracer used for cluster operation spans.
func (t *Tracer) Tracer() traceSpan.Tracer {
	return t.tracer.Tracer(instrumentationName)
}

// ForceFlush exports every ended span still queued in the batcher.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t == nil || t.tracer == nil {
		return nil
	}
	return t.tracer.ForceFlush(ctx)
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.tracer == nil {
		return nil
	}
	t.logger.Info("shutting down tracer", nil)
	return t.tracer.Shutdown(ctx)
}

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
