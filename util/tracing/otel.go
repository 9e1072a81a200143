// Package tracing wires OpenTelemetry spans, gocore stats, prometheus observations and
// start/done log lines into a single Start call.
package tracing

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/settings"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	once    sync.Once
	initErr error
	tp      *sdktrace.TracerProvider
	mu      sync.Mutex
)

// InitTracer installs the global tracer provider exporting to the OTLP/HTTP collector.
// Only the first call has an effect.
func InitTracer(tSettings *settings.Settings) error {
	once.Do(func() {
		if tSettings.Tracing.CollectorURL == nil {
			initErr = errors.NewConfigurationError("tracing is enabled but no collector url is set")
			return
		}

		var exporter *otlptrace.Exporter

		// the scheme of the url decides between http and https
		exporter, initErr = otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithEndpointURL(tSettings.Tracing.CollectorURL.String()),
		)
		if initErr != nil {
			initErr = errors.NewProcessingError("failed to create OTLP exporter", initErr)
			return
		}

		var res *resource.Resource

		res, initErr = resource.New(
			context.Background(),
			resource.WithAttributes(
				semconv.ServiceNameKey.String(tSettings.ServiceName),
				semconv.ServiceVersionKey.String(tSettings.Version),
				attribute.String("commit", tSettings.Commit),
			),
		)
		if initErr != nil {
			initErr = errors.NewProcessingError("failed to create resource", initErr)
			return
		}

		setTracerProvider(sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tSettings.Tracing.SampleRate))),
			sdktrace.WithResource(res),
		))
	})

	return initErr
}

func setTracerProvider(provider *sdktrace.TracerProvider) {
	mu.Lock()
	defer mu.Unlock()

	tp = provider

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// ShutdownTracer flushes and stops the tracer provider. Later calls are no-ops.
func ShutdownTracer(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if tp == nil {
		return nil
	}

	if err := tp.ForceFlush(ctx); err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			log.Printf("ERROR: failed to flush spans: %v", err)
			return nil
		}

		return errors.NewProcessingError("failed to flush spans", err)
	}

	if err := tp.Shutdown(ctx); err != nil {
		return errors.NewProcessingError("failed to shutdown tracer", err)
	}

	tp = nil

	return nil
}
