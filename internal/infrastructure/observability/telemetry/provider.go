// Package telemetry joins the concrete tracer, logger and metrics backends
// into the observability.Observability handed to the storefront.
package telemetry

import (
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
)

// Parts are the backends behind one Observability. Nil parts discard their
// signals.
type Parts struct {
	Tracer  observability.Tracer
	Logger  observability.Logger
	Metrics observability.Metrics
}

type bundle struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

func New(p Parts) observability.Observability {
	nop := observability.Nop()
	b := &bundle{tracer: p.Tracer, logger: p.Logger, metrics: p.Metrics}
	if b.tracer == nil {
		b.tracer = nop.Tracer()
	}
	if b.logger == nil {
		b.logger = nop.Logger()
	}
	if b.metrics == nil {
		b.metrics = nop.Metrics()
	}
	return b
}

func (b *bundle) Tracer() observability.Tracer   { return b.tracer }
func (b *bundle) Logger() observability.Logger   { return b.logger }
func (b *bundle) Metrics() observability.Metrics { return b.metrics }
