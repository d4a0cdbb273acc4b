package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// IDGenerator hands out identifiers for new records.
type IDGenerator interface {
	NewID() string
}

const spanPrefix = "UC."

// Instruments carries the signals every use case reports: one span, one RED
// sample and one use_case_done log line per invocation.
type Instruments struct {
	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	metrics      observability.Metrics
}

// NewInstruments binds the service name onto the base logger and resolves the
// RED instruments once. A nil tel yields no-op signals.
func NewInstruments(service string, tel observability.Observability) Instruments {
	tel = observability.OrNop(tel)
	m := tel.Metrics()
	return Instruments{
		log:          tel.Logger().With(observability.F("service", service)),
		tracer:       tel.Tracer(),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		metrics:      m,
	}
}

// Logger is the service's base logger.
func (in Instruments) Logger() observability.Logger { return in.log }

// Metrics exposes the provider for use-case specific instruments.
func (in Instruments) Metrics() observability.Metrics { return in.metrics }

// Invocation tracks one use case execution until End is called.
type Invocation struct {
	in      Instruments
	span    trace.Span
	logger  observability.Logger
	useCase string
	start   time.Time
	outcome string
	status  string
	fields  []observability.Field
}

// Begin starts the span named UC.<spanName> and binds use_case onto the
// request logger, which is stored back on the returned context.
func (in Instruments) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Invocation) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	ctx, logger := logctx.Enrich(ctx, in.log, observability.F("use_case", useCase))
	return ctx, &Invocation{
		in:      in,
		span:    span,
		logger:  logger,
		useCase: useCase,
		start:   time.Now(),
		outcome: observability.OutcomeSuccess,
		status:  "OK",
	}
}

// Fail marks the invocation as failed with a machine-readable status.
func (inv *Invocation) Fail(status string) {
	inv.outcome, inv.status = observability.OutcomeError, status
}

// Status overrides the status text without changing the outcome.
func (inv *Invocation) Status(status string) {
	inv.status = status
}

// Annotate adds fields to the final use_case_done line.
func (inv *Invocation) Annotate(fields ...observability.Field) {
	inv.fields = append(inv.fields, fields...)
}

func (inv *Invocation) Logger() observability.Logger { return inv.logger }

func (inv *Invocation) Span() trace.Span { return inv.span }

// End closes the span, records the RED sample and writes use_case_done.
func (inv *Invocation) End(ctx context.Context, err error) {
	lat := time.Since(inv.start).Seconds()
	if err != nil && inv.outcome == observability.OutcomeSuccess {
		inv.outcome = observability.OutcomeError
		if inv.status == "OK" {
			inv.status = "FAILED"
		}
	}

	if inv.span != nil {
		if err != nil {
			inv.span.RecordError(err)
			inv.span.SetStatus(codes.Error, inv.status)
		} else {
			inv.span.SetStatus(codes.Ok, inv.status)
		}
		inv.span.End()
	}

	inv.in.reqCounter.Add(1,
		observability.L("use_case", inv.useCase),
		observability.L("outcome", inv.outcome),
	)
	inv.in.durHistogram.Observe(lat,
		observability.L("use_case", inv.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", inv.outcome),
		observability.F("status", inv.status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, inv.fields...)
	if err != nil {
		fields = append(fields, observability.Err(err))
	}
	inv.logger.Info("use_case_done", fields...)
}
