// Package telemetry configures the OpenTelemetry tracer provider.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "imagesearch"

// Setup installs a global tracer provider and returns its shutdown func.
// With enabled=false nothing is installed and the global no-op provider stays.
// Additional span processors (exporters, test recorders) are attached as given.
func Setup(enabled bool, processors ...sdktrace.SpanProcessor) func(context.Context) error {
	if !enabled {
		return func(context.Context) error { return nil }
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
