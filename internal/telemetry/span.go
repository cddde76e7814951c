package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/mcoot/vibedraft"

// Start opens a span named name from the global tracer provider
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on the span, if any, and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SessionID is the span attribute for a session id
func SessionID(id string) attribute.KeyValue {
	return attribute.String("vibedraft.session_id", id)
}

// PlayerID is the span attribute for a player id
func PlayerID(id string) attribute.KeyValue {
	return attribute.String("vibedraft.player_id", id)
}
