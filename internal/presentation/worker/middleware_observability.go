package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/logctx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext stores a logger for one event delivery on ctx. It carries
// event_id (generated when attrs has none), trace_id/span_id when valid and
// the remaining attrs, which must stay low-cardinality.
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	sc trace.SpanContext,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = observability.NopLogger()
	}

	fields := make([]observability.Field, 0, len(attrs)+3)

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if sc.HasTraceID() {
		fields = append(fields, observability.F("trace_id", sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		fields = append(fields, observability.F("span_id", sc.SpanID().String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}

// EventMiddleware returns a wrapper that gives each handler call its own
// event-scoped logger before the handler runs.
func EventMiddleware(tel observability.Observability) func(useCase string, h domoutbox.Handler) domoutbox.Handler {
	base := observability.OrNop(tel).Logger().With(observability.F("component", "worker"))
	return func(useCase string, h domoutbox.Handler) domoutbox.Handler {
		return func(ctx context.Context, e domoutbox.Event) error {
			ctx = WithEventContext(ctx, base, trace.SpanContextFromContext(ctx), map[string]string{
				"event":    e.EventName(),
				"consumer": useCase,
			})
			return h(ctx, e)
		}
	}
}
