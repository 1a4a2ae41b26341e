package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope name used for all spans.
const TracerName = "github.com/teemow/gdrive"

// Span attribute keys following OpenTelemetry semantic conventions where
// applicable, with cli.* attributes for application-specific context.
const (
	SpanAttrCommand      = "cli.command"
	SpanAttrService      = "google.service"
	SpanAttrOperation    = "google.operation"
	SpanAttrAccount      = "cli.account"
	SpanAttrStatus       = "cli.status"
	SpanAttrResourceID   = "cli.resource_id"
	SpanAttrResourceType = "cli.resource_type"
	SpanAttrReadOnly     = "cli.read_only"
)

// SpanAttributeBuilder helps construct consistent span attributes.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new span attribute builder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithCommand adds the CLI command name attribute.
func (b *SpanAttributeBuilder) WithCommand(command string) *SpanAttributeBuilder {
	if command != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrCommand, command))
	}
	return b
}

// WithService adds the Google service name attribute.
func (b *SpanAttributeBuilder) WithService(service string) *SpanAttributeBuilder {
	if service != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrService, service))
	}
	return b
}

// WithOperation adds the operation type attribute.
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	if operation != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrOperation, operation))
	}
	return b
}

// WithAccount adds the account attribute. Empty accounts are skipped.
func (b *SpanAttributeBuilder) WithAccount(account string) *SpanAttributeBuilder {
	if account != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrAccount, account))
	}
	return b
}

// WithResource adds resource type and ID attributes. Empty values are skipped.
func (b *SpanAttributeBuilder) WithResource(resourceType, resourceID string) *SpanAttributeBuilder {
	if resourceType != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceType, resourceType))
	}
	if resourceID != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceID, resourceID))
	}
	return b
}

// WithReadOnly adds the read-only flag attribute.
func (b *SpanAttributeBuilder) WithReadOnly(readOnly bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrReadOnly, readOnly))
	return b
}

// Build returns the accumulated attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name using the global tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// StartCommandSpan starts a span for a CLI command invocation.
// The span name follows the pattern "command.<name>".
func StartCommandSpan(ctx context.Context, command string) (context.Context, trace.Span) {
	return StartSpan(ctx, "command."+command,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(SpanAttrCommand, command),
		),
	)
}

// StartGoogleAPISpan starts a client span for a Google API call.
// The span name follows the pattern "google.<service>.<operation>".
func StartGoogleAPISpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("google.%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(SpanAttrService, service),
			attribute.String(SpanAttrOperation, operation),
		),
	)
}

// SetSpanError records an error on the span and sets its status to error.
// Safe to call with a nil error (no-op).
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(SpanAttrStatus, StatusError))
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(SpanAttrStatus, StatusSuccess))
}

// AddSpanEvent adds a named event to the span.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the span in context,
// or empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// GetSpanID returns the span ID from the span in context,
// or empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}

// SpanContextString returns a human-readable representation of the
// current span context for log correlation, or empty string if no
// valid span is present.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return fmt.Sprintf("trace_id=%s span_id=%s", sc.TraceID(), sc.SpanID())
}
