package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OpenTelemetry meter and tracer used by workers.
// The zero value is usable and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer        trace.Tracer
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
}

// New wires an OpenTelemetry meter to the Prometheus exporter, so otel
// instruments show up on the same /metrics endpoint as promauto ones.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())))
	otel.SetTracerProvider(tp)

	o, err := newWithMeter(provider.Meter(serviceName), tp.Tracer(serviceName))
	if err != nil {
		return nil, err
	}
	o.meterProvider = provider
	o.tracerProvider = tp
	return o, nil
}

// NewNoop returns an Observability backed by no-op instruments.
func NewNoop() *Observability {
	o, _ := newWithMeter(noop.NewMeterProvider().Meter("noop"), otel.Tracer("noop"))
	return o
}

func newWithMeter(meter otelmetric.Meter, tracer trace.Tracer) (*Observability, error) {
	jobCounter, err := meter.Int64Counter(
		"quest.jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		"quest.jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		tracer:      tracer,
		jobCounter:  jobCounter,
		jobDuration: jobDuration,
	}, nil
}

// StartSpan opens a span named after the task type. End it with EndSpan.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("quest-workers")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (o *Observability) RecordJob(ctx context.Context, taskType, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	)
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, attrs)
	}
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if o.meterProvider != nil {
		return o.meterProvider.Shutdown(ctx)
	}
	return nil
}
