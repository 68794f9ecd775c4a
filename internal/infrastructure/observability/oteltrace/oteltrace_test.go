package oteltrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestInstallProducesValidSpans(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Install(ctx, "minishop-test", "test", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	spanCtx, span := New("test").Start(ctx, "UC.Checkout", attribute.String("use_case", "cart.checkout"))
	defer span.End()

	assert.True(t, trace.SpanContextFromContext(spanCtx).IsValid())
}

func TestSpanKinds(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Install(ctx, "minishop-test", "test", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, internal := New("").Start(ctx, "UC.PlaceOrder")
	defer internal.End()
	_, consumer := NewConsumer("worker").Start(ctx, "UC.HandleOrderPlaced")
	defer consumer.End()

	require.Implements(t, (*sdktrace.ReadOnlySpan)(nil), internal)
	assert.Equal(t, trace.SpanKindInternal, internal.(sdktrace.ReadOnlySpan).SpanKind())
	assert.Equal(t, trace.SpanKindConsumer, consumer.(sdktrace.ReadOnlySpan).SpanKind())
}
