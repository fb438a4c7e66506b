package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "responses-api"

// GetTracer returns the tracer for the responses service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartResponseSpan starts a span covering one response operation.
func StartResponseSpan(ctx context.Context, operation, model string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "response."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("response.model", model)),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
