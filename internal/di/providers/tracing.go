package providers

import (
	"context"

	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/logger"
)

// TracerProviderHandle owns the global tracer provider.
type TracerProviderHandle struct {
	trace.TracerProvider
	sdk *sdktrace.TracerProvider
}

// Shutdown implements do.Shutdownable. It flushes pending spans.
func (h *TracerProviderHandle) Shutdown() error {
	if h.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.sdk.Shutdown(ctx)
}

// ProvideTracerProvider installs an OTLP/HTTP exporting tracer provider when
// tracing is enabled and a no-op one otherwise.
func ProvideTracerProvider(i do.Injector) (*TracerProviderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Tracing.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return &TracerProviderHandle{TracerProvider: tp}, nil
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.Tracing.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.Tracing.ServiceName),
			attribute.String("deployment.environment", cfg.App.Environment),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint, "service", cfg.Tracing.ServiceName)

	return &TracerProviderHandle{TracerProvider: tp, sdk: tp}, nil
}
