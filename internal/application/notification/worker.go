// Package notification confirms placed orders to their buyers.
package notification

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	workerService       = "notification-worker"
	useCaseOrderPlaced  = "notification.order_placed"
	confirmationMessage = "Order placed successfully!"
)

// Confirmation is what a buyer is told once their order is written.
type Confirmation struct {
	OrderID  string
	Username string
	Message  string
	Summary  string
}

// Notifier delivers confirmations.
type Notifier interface {
	Notify(ctx context.Context, c Confirmation) error
}

// Worker turns order.placed events into confirmations.
type Worker struct {
	notifier Notifier
	ins      application.Instruments
}

func NewWorker(notifier Notifier, tel observability.Observability) *Worker {
	return &Worker{
		notifier: notifier,
		ins:      application.NewInstruments(workerService, tel),
	}
}

// Register subscribes the worker's handlers, each passed through wrap first
// when wrap is non-nil.
func (w *Worker) Register(sub domoutbox.Subscriber, wrap func(useCase string, h domoutbox.Handler) domoutbox.Handler) {
	if sub == nil || w.notifier == nil {
		return
	}
	h := domoutbox.Handler(w.HandleOrderPlaced)
	if wrap != nil {
		h = wrap(useCaseOrderPlaced, h)
	}
	sub.Subscribe(domorder.OrderPlacedEvent{}.EventName(), h)
}

func (w *Worker) HandleOrderPlaced(ctx context.Context, e domoutbox.Event) (err error) {
	evt, ok := e.(domorder.OrderPlacedEvent)
	if !ok {
		return nil
	}

	ctx, inv := w.ins.Begin(ctx, useCaseOrderPlaced, "OrderPlaced",
		attribute.String("event", e.EventName()),
		attribute.String("order.id", evt.OrderID),
	)
	defer func() {
		inv.Annotate(observability.F("order_id", evt.OrderID))
		inv.End(ctx, err)
	}()

	c := Confirmation{
		OrderID:  evt.OrderID,
		Username: evt.Username,
		Message:  confirmationMessage,
		Summary:  fmt.Sprintf("%s, size %s, %s", evt.Garment, evt.Size, domcatalog.Cents(evt.PriceCents)),
	}
	if err := w.notifier.Notify(ctx, c); err != nil {
		inv.Fail("NOTIFY_FAILED")
		return fmt.Errorf("notification: notify order %s: %w", evt.OrderID, err)
	}
	return nil
}
