package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService   = "order-service"
	useCasePlace   = "order.place"
	useCaseList    = "order.list"
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

var (
	ErrConflict = domorder.ErrConflict
	ErrNotFound = domorder.ErrNotFound
)

// Option customises a Service.
type Option func(*Service)

// WithRequiredShipping makes PlaceOrder reject blank shipping fields.
func WithRequiredShipping(required bool) Option {
	return func(s *Service) { s.requireShipping = required }
}

// WithPublisher sets where order.placed events go after a successful write.
func WithPublisher(p domoutbox.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// Service is the order ledger. Orders are append-only.
type Service struct {
	repo            domorder.Repository
	ids             application.IDGenerator
	publisher       domoutbox.Publisher
	requireShipping bool
	ins             application.Instruments

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewService(repo domorder.Repository, ids application.IDGenerator, tel observability.Observability, opts ...Option) *Service {
	ins := application.NewInstruments(orderService, tel)
	s := &Service{
		repo:         repo,
		ids:          ids,
		ins:          ins,
		extCounter:   ins.Metrics().Counter(observability.MExternalRequests),
		extHistogram: ins.Metrics().Histogram(observability.MExternalRequestDuration),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type PlaceOrderInput struct {
	Garment  domcatalog.Garment
	Size     string
	Shipping domorder.Shipping
	// IdempotencyKey, when set, makes a repeated call return the order the
	// first call wrote.
	IdempotencyKey string
}

// PlaceOrder appends a Placed order holding its own copy of in.Garment.
func (s *Service) PlaceOrder(ctx context.Context, session domacct.Session, in PlaceOrderInput) (orderID string, err error) {
	ctx, inv := s.ins.Begin(ctx, useCasePlace, "PlaceOrder",
		attribute.String("garment.id", in.Garment.ID),
		attribute.String("order.size", in.Size),
	)
	var publishErr error
	defer func() {
		if orderID != "" {
			inv.Annotate(observability.F("order_id", orderID))
		}
		if publishErr != nil {
			inv.Annotate(observability.F("event_publish_error", publishErr.Error()))
		}
		inv.End(ctx, err)
	}()
	span := inv.Span()

	if err := session.Require(); err != nil {
		inv.Fail("SESSION_REQUIRED")
		return "", err
	}
	if in.Size == "" {
		inv.Fail("SIZE_REQUIRED")
		return "", domain.Invalid("size", "is required")
	}
	if s.requireShipping {
		if err := in.Shipping.Validate(); err != nil {
			inv.Fail("SHIPPING_INVALID")
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		inv.Fail("CONTEXT_CANCELED")
		return "", err
	}

	if in.IdempotencyKey != "" {
		existing, repoErr := s.repo.FindByIdempotency(ctx, session.Username, in.IdempotencyKey)
		switch {
		case repoErr == nil:
			if !existing.SamePurchase(in.Garment.ID, in.Size) {
				inv.Fail("IDEMPOTENCY_KEY_REUSED")
				return "", domorder.ErrIdempotencyMismatch
			}
			inv.Status("IDEMPOTENT_REPLAY")
			span.AddEvent("order.idempotent_replay",
				trace.WithAttributes(attribute.String("order.id", existing.ID)),
			)
			return existing.ID, nil
		case errors.Is(repoErr, domain.ErrNotFound):
		default:
			inv.Fail("IDEMPOTENCY_LOOKUP_FAILED")
			return "", domain.Persistence("orders.find_by_idempotency", repoErr)
		}
	}

	entity, err := domorder.New(s.ids.NewID(), session.Username, in.Garment, in.Size, in.Shipping, in.IdempotencyKey)
	if err != nil {
		inv.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return "", fmt.Errorf("order: construct: %w", err)
	}
	if err := s.repo.Insert(ctx, entity); err != nil {
		if errors.Is(err, domorder.ErrConflict) && in.IdempotencyKey != "" {
			if existing, lookupErr := s.repo.FindByIdempotency(ctx, session.Username, in.IdempotencyKey); lookupErr == nil {
				if !existing.SamePurchase(in.Garment.ID, in.Size) {
					inv.Fail("IDEMPOTENCY_KEY_REUSED")
					return "", domorder.ErrIdempotencyMismatch
				}
				inv.Status("IDEMPOTENT_REPLAY")
				return existing.ID, nil
			}
		}
		inv.Fail("REPO_INSERT_FAILED")
		return "", domain.Persistence("orders.insert", err)
	}

	publishErr = s.publish(ctx, entity)
	if publishErr != nil {
		span.RecordError(publishErr)
		inv.Status("EVENT_PUBLISH_FAILED")
	}

	span.SetAttributes(attribute.String("order.status", string(entity.Status)))
	span.AddEvent("order.placed", trace.WithAttributes(attribute.String("order.id", entity.ID)))
	return entity.ID, nil
}

// publish emits order.placed. Failures are reported but never undo the write.
func (s *Service) publish(ctx context.Context, o *domorder.Order) error {
	if s.publisher == nil {
		return nil
	}
	evt := domorder.NewOrderPlacedEvent(o)
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	outcome := "success"
	err := s.publisher.Publish(pubCtx, evt)
	if err != nil {
		outcome = "error"
	} else if pubCtx.Err() != nil {
		outcome = "canceled"
		err = pubCtx.Err()
	}

	s.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", evt.EventName()),
		observability.L("outcome", outcome),
	)
	s.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", evt.EventName()),
	)
	return err
}

// ListOrders returns the session user's orders, oldest first.
func (s *Service) ListOrders(ctx context.Context, session domacct.Session) (_ []domorder.Order, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseList, "ListOrders")
	defer func() { inv.End(ctx, err) }()

	if err := session.Require(); err != nil {
		inv.Fail("SESSION_REQUIRED")
		return nil, err
	}
	orders, err := s.repo.ListByUser(ctx, session.Username)
	if err != nil {
		inv.Fail("REPO_LIST_FAILED")
		return nil, domain.Persistence("orders.list", err)
	}
	inv.Annotate(observability.F("count", len(orders)))
	return orders, nil
}
