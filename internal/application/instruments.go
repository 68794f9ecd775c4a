package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instruments bundles the RED instruments every use case reports to.
// Build it once at wiring time; never inside Execute.
type Instruments struct {
	tracer observability.Tracer
	log    observability.Logger

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstruments(tel observability.Observability, service string) Instruments {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return Instruments{
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

func (in Instruments) Logger() observability.Logger { return in.log }

// Run tracks a single use case execution. Callers set Outcome/Status on
// failure paths and call End from a defer.
type Run struct {
	in      Instruments
	useCase string
	start   time.Time
	ctx     context.Context
	span    trace.Span
	fields  []observability.Field

	Log     observability.Logger
	Outcome string
	Status  string
}

// Begin opens the span, binds a use_case scoped logger into the context and
// starts the latency clock.
func (in Instruments) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, SpanPrefix+spanName, attrs...)

	ctx, logger := logctx.Extend(ctx, in.log, observability.F("use_case", useCase))

	return ctx, &Run{
		in:      in,
		useCase: useCase,
		start:   time.Now(),
		ctx:     ctx,
		span:    span,
		Log:     logger,
		Outcome: OutcomeSuccess,
		Status:  "OK",
	}
}

func (r *Run) Span() trace.Span { return r.span }

// Fail marks the run as failed with a SCREAMING_SNAKE status.
func (r *Run) Fail(status string) {
	r.Outcome, r.Status = OutcomeError, status
}

// With adds fields to the closing use_case_done line.
func (r *Run) With(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

func (r *Run) End(err error) {
	lat := time.Since(r.start).Seconds()

	if err != nil {
		if r.Outcome == OutcomeSuccess {
			r.Outcome = OutcomeError
		}
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, r.Status)
	} else {
		r.span.SetStatus(codes.Ok, r.Status)
	}
	r.span.End()

	r.in.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", r.Outcome),
	)
	r.in.durHistogram.Observe(lat,
		observability.L("use_case", r.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", r.Outcome),
		observability.F("status", r.Status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(r.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, r.fields...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	r.Log.Info("use_case_done", fields...)
}

// External records one call to a collaborator outside the use case.
func (in Instruments) External(peer, endpoint, outcome string, start time.Time) {
	in.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
}

// Count bumps the request counter without a span, for events a handler skips.
func (in Instruments) Count(useCase, outcome string) {
	in.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
}

const (
	publishPeer    = "outbox"
	PublishTimeout = 300 * time.Millisecond
)

// Publish sends e with a short timeout and reports it as an external call.
// Publishing is best-effort: callers log the error and keep their result.
func (in Instruments) Publish(ctx context.Context, pub outbox.Publisher, e outbox.Event) error {
	if pub == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	start := time.Now()
	outcome := OutcomeSuccess
	err := pub.Publish(pubCtx, e)
	if err != nil {
		outcome = OutcomeError
	} else if pubCtx.Err() != nil {
		outcome = OutcomeCanceled
		err = pubCtx.Err()
	}
	in.External(publishPeer, e.EventName(), outcome, start)
	return err
}
