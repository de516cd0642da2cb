// Package telemetry records one trace per conversation turn.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jamaly87/codebase-qa/internal/models"
)

// TraceName names the span emitted for every turn
const TraceName = "codebase-qa"

// Turn is the observable outcome of one conversation turn.
// Error holds the short-circuit message when the turn was rejected or
// retrieval failed.
type Turn struct {
	Query            string
	Response         string
	RetrievedContext []models.CodeChunk
	Error            string
}

// Recorder captures completed turns
type Recorder interface {
	RecordTurn(ctx context.Context, turn Turn)
}

// NoopRecorder drops every turn
type NoopRecorder struct{}

func (NoopRecorder) RecordTurn(context.Context, Turn) {}

// OtelRecorder emits each turn as a span with retrieved_context and error events
type OtelRecorder struct {
	tracer    trace.Tracer
	sessionID string
}

// NewOtelRecorder creates a recorder on the given tracer provider
func NewOtelRecorder(tp trace.TracerProvider, sessionID string) *OtelRecorder {
	return &OtelRecorder{
		tracer:    tp.Tracer("github.com/jamaly87/codebase-qa/internal/telemetry"),
		sessionID: sessionID,
	}
}

func (r *OtelRecorder) RecordTurn(ctx context.Context, turn Turn) {
	_, span := r.tracer.Start(ctx, TraceName, trace.WithAttributes(
		attribute.String("session.id", r.sessionID),
		attribute.String("input", turn.Query),
		attribute.String("output", turn.Response),
	))
	defer span.End()

	paths := make([]string, len(turn.RetrievedContext))
	for i, c := range turn.RetrievedContext {
		paths[i] = c.FilePath
	}
	span.AddEvent("retrieved_context", trace.WithAttributes(
		attribute.Int("chunks.count", len(turn.RetrievedContext)),
		attribute.StringSlice("chunks.file_paths", paths),
	))

	if turn.Error != "" {
		span.AddEvent("error", trace.WithAttributes(attribute.String("message", turn.Error)))
		span.SetStatus(codes.Error, turn.Error)
	}
}
