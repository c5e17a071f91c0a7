package main

import (
	"context"

	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type tracerProvider interface {
	trace.TracerProvider
	Shutdown(ctx context.Context) error
}

type noopProvider struct {
	noop.TracerProvider
}

func (noopProvider) Shutdown(context.Context) error { return nil }

// newTracerProvider exports to Jaeger when an address is configured and
// discards spans otherwise.
func newTracerProvider(jaegerAddress string) (tracerProvider, error) {
	if jaegerAddress == "" {
		return noopProvider{noop.NewTracerProvider()}, nil
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerAddress)))
	if err != nil {
		return nil, err
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	), nil
}
