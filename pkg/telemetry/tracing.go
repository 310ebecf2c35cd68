// Package telemetry — OpenTelemetry трейсинг с экспортом по OTLP/HTTP.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const defaultCollector = "localhost:4318"

// Config — параметры трейсинга.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string // host:port или URL коллектора; https:// включает TLS
	SampleRatio    float64
}

// ShutdownFunc — сброс буферов и остановка провайдера.
type ShutdownFunc func(context.Context) error

// Setup — глобальный TracerProvider и W3C-пропагаторы. Выключенный трейсинг
// ничего не трогает и возвращает пустой shutdown.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, exporterOptions(cfg.Endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ClampRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}

func exporterOptions(endpoint string) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(NormalizeEndpoint(endpoint))}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "https://") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// NormalizeEndpoint — host:port для otlptracehttp.WithEndpoint; схема и путь отбрасываются.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return defaultCollector
	}
	if _, rest, ok := strings.Cut(endpoint, "://"); ok {
		if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
			return u.Host
		}
		endpoint = rest
	}
	host, _, _ := strings.Cut(endpoint, "/")
	return host
}

// ClampRatio — доля семплирования в [0, 1].
func ClampRatio(r float64) float64 {
	return max(0, min(r, 1))
}
