package parking

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultServiceName    = "parking-lot-service"
	DefaultOTLPEndpoint   = "http://localhost:4318"
	DefaultExportInterval = 5 * time.Second

	serviceVersion = "2.0.0"
)

// TelemetryConfig says where traces and metrics are shipped. Zero fields
// fall back to the defaults above.
type TelemetryConfig struct {
	ServiceName    string
	Endpoint       string
	ExportInterval time.Duration
}

func (c TelemetryConfig) withDefaults() TelemetryConfig {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultOTLPEndpoint
	}
	c.Endpoint = strings.TrimSuffix(c.Endpoint, "/")
	if c.ExportInterval <= 0 {
		c.ExportInterval = DefaultExportInterval
	}
	return c
}

// TelemetryProvider owns the tracer and meter used by the instrumented
// service and the shell.
type TelemetryProvider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
}

// NewTelemetryProvider builds OTLP/HTTP exporters for cfg and installs the
// providers and a W3C propagator as the otel globals.
func NewTelemetryProvider(ctx context.Context, cfg TelemetryConfig) (*TelemetryProvider, error) {
	cfg = cfg.withDefaults()

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return NewTelemetryProviderFrom(cfg.ServiceName, tp, mp), nil
}

// NewTelemetryProviderFrom wraps already configured SDK providers without
// touching the globals. Tests use it with in-memory readers.
func NewTelemetryProviderFrom(serviceName string, tp *sdktrace.TracerProvider, mp *sdkmetric.MeterProvider) *TelemetryProvider {
	return &TelemetryProvider{
		tracerProvider: tp,
		meterProvider:  mp,
		tracer:         tp.Tracer(serviceName),
		meter:          mp.Meter(serviceName),
	}
}

func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	opts := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	}
	// OTEL_RESOURCE_ATTRIBUTES, when set, adds deployment labels.
	if os.Getenv("OTEL_RESOURCE_ATTRIBUTES") != "" {
		opts = append(opts, resource.WithFromEnv())
	}
	return resource.New(ctx, opts...)
}

func newTracerProvider(ctx context.Context, cfg TelemetryConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint+"/v1/traces"),
		// Collector runs next to the service.
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func newMeterProvider(ctx context.Context, cfg TelemetryConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(cfg.Endpoint+"/v1/metrics"),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.ExportInterval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}

func (tp *TelemetryProvider) Tracer() trace.Tracer {
	return tp.tracer
}

func (tp *TelemetryProvider) Meter() metric.Meter {
	return tp.meter
}

// Shutdown flushes both providers. Both are always shut down; their
// errors are joined.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	return errors.Join(
		tp.tracerProvider.Shutdown(ctx),
		tp.meterProvider.Shutdown(ctx),
	)
}
