package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

func newTestRecorder() (*OtelRecorder, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return NewOtelRecorder(tp, "session-1"), sr
}

func TestOtelRecorder_RecordTurn(t *testing.T) {
	rec, sr := newTestRecorder()

	rec.RecordTurn(context.Background(), Turn{
		Query:    "what does auth.py do",
		Response: "It validates tokens.",
		RetrievedContext: []models.CodeChunk{
			{FilePath: "auth.py"},
			{FilePath: "app/routes.py"},
		},
	})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, TraceName, span.Name())
	assert.Contains(t, span.Attributes(), attribute.String("session.id", "session-1"))
	assert.Contains(t, span.Attributes(), attribute.String("input", "what does auth.py do"))

	events := span.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "retrieved_context", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.Int("chunks.count", 2))
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestOtelRecorder_ErrorEvent(t *testing.T) {
	rec, sr := newTestRecorder()

	rec.RecordTurn(context.Background(), Turn{Query: "write an essay", Response: "nope", Error: "nope"})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[1].Name)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestSetup_Disabled(t *testing.T) {
	rec, shutdown, err := Setup(context.Background(), &config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, NoopRecorder{}, rec)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "collector:4318", stripScheme("https://collector:4318"))
	assert.Equal(t, "localhost:4318", stripScheme("localhost:4318"))
}
