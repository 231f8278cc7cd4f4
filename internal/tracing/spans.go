package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys.
const (
	AttrFormatName = "format.name"
	AttrFormatFile = "format.file"
	AttrColumn     = "table.column"
	AttrRows       = "table.rows"
	AttrColumns    = "table.columns"
	AttrFieldName  = "field.name"
	AttrFromUnit   = "unit.from"
	AttrToUnit     = "unit.to"
	AttrCatalog    = "catalog.name"
	AttrDataFile   = "table.file"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanFormatLoad      = "format.load"
	SpanTableRead       = "table.read"
	SpanTableConvert    = "table.convert"
	SpanPrefixColumn    = "table.column."
	SpanCatalogRegister = "catalog.register"
	SpanPrefixCommand   = "command."
)

// Event names.
const (
	EventColumnConverted = "column.converted"
	EventFieldSkipped    = "field.skipped"
)

var fallback = noop.NewTracerProvider().Tracer("noop")

// OrNoop returns t, or a no-op tracer when t is nil, so callers can accept
// an optional tracer.
func OrNoop(t trace.Tracer) trace.Tracer {
	if t == nil {
		return fallback
	}
	return t
}

// Start opens an internal span with attributes.
func Start(ctx context.Context, t trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return OrNoop(t).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Finish records the outcome of a span and ends it.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceIDFromContext returns the hex trace ID of the active span, or "" when
// ctx carries no valid span.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
