package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// BuildHeaders collects the correlation headers attached to published events.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

// HeadersFromContext builds headers from the request id and active span of ctx.
func HeadersFromContext(ctx context.Context) map[string]string {
	var traceID string
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	return BuildHeaders(RequestIDFromContext(ctx), traceID)
}
