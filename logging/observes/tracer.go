package observes

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ncobase/issues"

type TracerOption struct {
	Endpoint      string
	Name          string
	Version       string
	Revision      string
	Environment   string
	SamplingRate  float64
	BatchTimeout  time.Duration
	ExportTimeout time.Duration
}

// NewTracer installs a global OTLP/gRPC tracer provider and returns its
// shutdown function. A nil option or empty endpoint leaves tracing off.
func NewTracer(opt *TracerOption) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if opt == nil || opt.Endpoint == "" {
		return noop, nil
	}

	exp, err := otlptracegrpc.New(
		context.Background(),
		otlptracegrpc.WithEndpoint(opt.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return noop, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opt.Name),
			attribute.String("version", opt.Version),
			attribute.String("revision", opt.Revision),
			attribute.String("environment", opt.Environment),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("failed to create resource: %w", err)
	}

	batchOpts := []sdktrace.BatchSpanProcessorOption{}
	if opt.BatchTimeout > 0 {
		batchOpts = append(batchOpts, sdktrace.WithBatchTimeout(opt.BatchTimeout))
	}
	if opt.ExportTimeout > 0 {
		batchOpts = append(batchOpts, sdktrace.WithExportTimeout(opt.ExportTimeout))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opt.SamplingRate))),
		sdktrace.WithBatcher(exp, batchOpts...),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

type Layer int

const (
	LayerUnknown Layer = iota
	LayerHandler
	LayerService
	LayerRepo
)

func (l Layer) String() string {
	return [...]string{"Unknown", "Handler", "Service", "Repository"}[l]
}

// StartSpan starts a span on the global tracer tagged with its layer.
func StartSpan(ctx context.Context, layer Layer, name string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name,
		trace.WithAttributes(attribute.String("layer", layer.String())))
}

// RecordError marks span as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
