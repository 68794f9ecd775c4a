// Package oteltrace backs the observability.Tracer port with OpenTelemetry.
package oteltrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
)

const defaultTracerName = "minishop-cart"

type tracer struct {
	t    trace.Tracer
	kind trace.SpanKind
}

// New returns a tracer resolved from the global provider, so Install must run
// first for spans to be recorded. Use case spans are internal spans.
func New(name string) observability.Tracer {
	if name == "" {
		name = defaultTracerName
	}
	return &tracer{t: otel.Tracer(name), kind: trace.SpanKindInternal}
}

// NewConsumer is New for spans opened by event handlers.
func NewConsumer(name string) observability.Tracer {
	t := New(name).(*tracer)
	t.kind = trace.SpanKindConsumer
	return t
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithSpanKind(t.kind), trace.WithAttributes(attrs...))
}
