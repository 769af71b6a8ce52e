package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNoop_RecordsWithoutPanicking(t *testing.T) {
	o := NewNoop()

	ctx, span := o.StartSpan(context.Background(), "quest.match-templates", attribute.Int64("jobKey", 7))
	assert.NotNil(t, ctx)

	assert.NotPanics(t, func() {
		o.RecordJob(ctx, "quest.match-templates", "completed", 12*time.Millisecond)
		EndSpan(span, errors.New("catalog down"))
	})
	assert.NoError(t, o.Shutdown(context.Background()))
}

func TestZeroValue_IsUsable(t *testing.T) {
	var o Observability

	_, span := o.StartSpan(context.Background(), "x")
	assert.NotPanics(t, func() {
		o.RecordJob(context.Background(), "x", "failed", time.Second)
		EndSpan(span, nil)
	})
	assert.NoError(t, o.Shutdown(context.Background()))
}

func TestStartSpan_RecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	o, err := newWithMeter(noop.NewMeterProvider().Meter("test"), tp.Tracer("test"))
	require.NoError(t, err)

	_, ok := o.StartSpan(context.Background(), "evaluate-project-score", attribute.Int64("job.key", 42))
	EndSpan(ok, nil)
	_, failed := o.StartSpan(context.Background(), "match-templates")
	EndSpan(failed, errors.New("index missing"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "evaluate-project-score", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("job.key", 42))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "match-templates", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "index missing", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}
