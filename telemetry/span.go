package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

// Attribute keys recorded on operation spans.
const (
	AttrOperation  = "playht.operation"
	AttrRequestID  = "playht.request_id"
	AttrJobID      = "playht.job.id"
	AttrVoiceID    = "playht.voice.id"
	AttrErrorKind  = "playht.error.kind"
	AttrStatusCode = "http.response.status_code"
	AttrChunks     = "playht.stream.chunks"
	AttrBytes      = "playht.stream.bytes"
)

// StartOperation starts a client span named "playht.<operation>".
func StartOperation(
	ctx context.Context, tracer trace.Tracer, operation string, attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(AttrOperation, operation))
	return tracer.Start(ctx, "playht."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndOperation finishes span, recording err and its kind when non-nil.
func EndOperation(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorKind, pkgerrors.KindOf(err).String()))
		if code := pkgerrors.StatusCode(err); code != 0 {
			span.SetAttributes(attribute.Int(AttrStatusCode, code))
		}
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
