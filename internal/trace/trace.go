// Package trace owns the process-wide OpenTelemetry tracer. Spans are
// exported as JSON to stderr so they never interleave with the report
// printed on stdout.
package trace

import (
	"context"
	"io"
	"os"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "stock-sentiment-roi"

// version is overridden at link time with
// -ldflags "-X stock-sentiment-roi/internal/trace.version=v1.2.3".
var version = ""

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	enabled        bool
)

// Config controls span export.
type Config struct {
	Enabled bool
	Output  io.Writer // Defaults to stderr
	Pretty  bool
	// Sync exports each span as it ends instead of batching.
	Sync bool
}

// LoadConfigFromEnv reads LOG_TRACING_ENABLED (default true) and LOG_TRACING_PRETTY.
func LoadConfigFromEnv() Config {
	return Config{
		Enabled: getEnv("LOG_TRACING_ENABLED", "true") == "true",
		Pretty:  getEnv("LOG_TRACING_PRETTY", "false") == "true",
	}
}

// Init configures tracing from the environment.
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

func InitWithConfig(cfg Config) error {
	enabled = cfg.Enabled
	if !enabled {
		return nil
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		enabled = false
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(Version()),
		),
	)
	if err != nil {
		enabled = false
		return err
	}

	export := sdktrace.WithBatcher(exporter)
	if cfg.Sync {
		export = sdktrace.WithSyncer(exporter)
	}
	tracerProvider = sdktrace.NewTracerProvider(export, sdktrace.WithResource(res))
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	return nil
}

// Version is the link-time version, else the module version recorded in the
// binary's build info, else "dev".
func Version() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// Shutdown flushes pending spans and disables tracing.
func Shutdown(ctx context.Context) error {
	enabled = false
	if tracerProvider == nil {
		return nil
	}
	tp := tracerProvider
	tracerProvider, tracer = nil, nil
	return tp.Shutdown(ctx)
}

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

func Enabled() bool {
	return enabled
}

func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
