// Package telemetry wires playht-go into OpenTelemetry. Every API operation
// runs inside a client span obtained from Tracer; the CLI exports those spans
// over OTLP/HTTP with NewTracerProvider.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/AltairaLabs/playht-go/version"
)

// InstrumentationName is the scope name of every span the client records.
const InstrumentationName = "github.com/AltairaLabs/playht-go"

// DefaultServiceName is used when NewTracerProvider is given an empty name.
const DefaultServiceName = "playht-go"

// Tracer returns the client tracer from tp, or from the global provider when
// tp is nil. The scope version is the module build version.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(version.GetVersion()))
}

// ProviderOption customizes NewTracerProvider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	sampleRatio float64
	headers     map[string]string
}

// WithSampleRatio samples the given fraction of root traces. Child spans
// follow their parent. The default samples everything.
func WithSampleRatio(ratio float64) ProviderOption {
	return func(c *providerConfig) { c.sampleRatio = ratio }
}

// WithHeaders adds headers, such as collector auth, to every OTLP export.
func WithHeaders(headers map[string]string) ProviderOption {
	return func(c *providerConfig) { c.headers = headers }
}

// NewTracerProvider creates a TracerProvider exporting spans to an OTLP/HTTP
// collector. endpoint is either a full URL ("https://otel:4318/v1/traces") or
// a bare host:port, which is reached over plain HTTP. The caller must Shutdown
// the provider to flush buffered spans.
func NewTracerProvider(
	ctx context.Context, endpoint, serviceName string, opts ...ProviderOption,
) (*sdktrace.TracerProvider, error) {
	cfg := providerConfig{sampleRatio: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	exporter, err := otlptracehttp.New(ctx, exporterOptions(endpoint, cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version.GetVersion()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio))),
	), nil
}

func exporterOptions(endpoint string, cfg providerConfig) []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	}
	if len(cfg.headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.headers))
	}
	return opts
}

// SetupPropagation installs a global propagator for W3C trace context,
// baggage and AWS X-Ray headers, so outgoing play.ht requests join the
// caller's trace.
func SetupPropagation() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
		xray.Propagator{},
	))
}
