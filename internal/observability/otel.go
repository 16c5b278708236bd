// Package observability wires OpenTelemetry tracing for the server: an OTLP
// gRPC exporter, a ratio sampler and the W3C propagators used by the inbound
// gin middleware and the outbound profile API client.
package observability

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"google.golang.org/grpc/credentials"

	"github.com/tbourn/brasil-beauty-backend/internal/config"
)

// serviceNamespace groups the backend with the directory's other services.
const serviceNamespace = "brasil-beauty"

// UpstreamHostKey records which profile API instance the backend talks to, so
// traces from different upstreams can be told apart.
const UpstreamHostKey = attribute.Key("brasil_beauty.profile_api.host")

// serviceInfo is what ends up on the trace resource.
type serviceInfo struct {
	Name         string
	Version      string
	Environment  string
	UpstreamHost string
}

var (
	newSpanExporterFn = func(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
		return otlptrace.New(ctx, otlptracegrpc.NewClient(clientOptions(cfg)...))
	}

	newServiceResourceFn = func(ctx context.Context, info serviceInfo) (*resource.Resource, error) {
		attrs := []attribute.KeyValue{
			semconv.ServiceName(info.Name),
			semconv.ServiceNamespace(serviceNamespace),
			semconv.ServiceVersion(info.Version),
		}
		if info.Environment != "" {
			attrs = append(attrs, semconv.DeploymentEnvironment(info.Environment))
		}
		if info.UpstreamHost != "" {
			attrs = append(attrs, UpstreamHostKey.String(info.UpstreamHost))
		}
		return resource.New(ctx, resource.WithAttributes(attrs...))
	}
)

func clientOptions(cfg config.OTELConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		return append(opts, otlptracegrpc.WithInsecure())
	}
	return append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
}

// upstreamHost reduces the profile API base URL to host[:port]; unparsable
// values are dropped.
func upstreamHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// SetupOTel configures OpenTelemetry tracing and returns a shutdown function.
// upstreamURL is the profile API base URL; only its host is recorded.
func SetupOTel(ctx context.Context, cfg config.OTELConfig, version, upstreamURL string) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newSpanExporterFn(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := newServiceResourceFn(ctx, serviceInfo{
		Name:         cfg.ServiceName,
		Version:      version,
		Environment:  cfg.Environment,
		UpstreamHost: upstreamHost(upstreamURL),
	})
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
