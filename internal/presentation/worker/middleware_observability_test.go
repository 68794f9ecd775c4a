package workerpresentation

import (
	"context"
	"testing"

	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type placed struct{}

func (placed) EventName() string { return "order.placed" }

func TestObserveBindsEventFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zaplogger.Wrap(zap.New(core))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	h := Observe(base, func(ctx context.Context, _ domoutbox.Event) error {
		logctx.From(ctx).Info("handled")
		return nil
	})
	require.NoError(t, h(ctx, placed{}))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "order.placed", fields["event"])
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.NotEmpty(t, fields["event_id"])
}

func TestWithEventContextKeepsProvidedEventID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithEventContext(context.Background(), zaplogger.Wrap(zap.New(core)), trace.SpanContext{},
		map[string]string{"event_id": "evt-1", "use_case": "x", "empty": ""})

	logctx.From(ctx).Info("hi")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "x", fields["use_case"])
	assert.NotContains(t, fields, "empty")
	assert.NotContains(t, fields, "trace_id")
}
