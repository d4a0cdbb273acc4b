package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	apporder "github.com/Zhima-Mochi/garmentshop/internal/application/order"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const useCaseCheckoutCart = "checkout.cart"

type CheckoutCartCommand struct {
	Session  domacct.Session
	Shipping domorder.Shipping
}

// CheckoutCartUseCase places one order per cart entry and removes each entry
// once its order is written. It is not atomic: entries are processed in cart
// order and a failure on one does not stop the rest.
type CheckoutCartUseCase struct {
	cart    CartLedger
	orders  OrderLedger
	ins     application.Instruments
	entries observability.Counter // checkout_entries_total{result}
}

var _ application.UseCase[CheckoutCartCommand, *CheckoutResult] = (*CheckoutCartUseCase)(nil)

func NewCheckoutCartUseCase(cart CartLedger, orders OrderLedger, tel observability.Observability) *CheckoutCartUseCase {
	ins := application.NewInstruments(checkoutService, tel)
	return &CheckoutCartUseCase{
		cart:    cart,
		orders:  orders,
		ins:     ins,
		entries: ins.Metrics().Counter(observability.MCheckoutEntries),
	}
}

// Execute always returns a non-nil result once the cart has been read, so
// callers can see what was placed even when err is ErrPartialCheckout or a
// context error.
func (uc *CheckoutCartUseCase) Execute(ctx context.Context, cmd CheckoutCartCommand) (res *CheckoutResult, err error) {
	ctx, inv := uc.ins.Begin(ctx, useCaseCheckoutCart, "CheckoutCart")
	defer func() {
		if res != nil {
			inv.Annotate(
				observability.F("placed", len(res.OrderIDs)),
				observability.F("failed", len(res.Failures)),
			)
		}
		inv.End(ctx, err)
	}()
	span := inv.Span()

	if err := cmd.Session.Require(); err != nil {
		inv.Fail("SESSION_REQUIRED")
		return nil, err
	}

	entries, err := uc.cart.ListCart(ctx, cmd.Session)
	if err != nil {
		inv.Fail("CART_LIST_FAILED")
		return nil, err
	}
	if len(entries) == 0 {
		inv.Fail("CART_EMPTY")
		return nil, ErrEmptyCart
	}
	span.SetAttributes(attribute.Int("cart.entries", len(entries)))

	res = &CheckoutResult{}
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			inv.Fail("CONTEXT_CANCELED")
			return res, fmt.Errorf("checkout: stopped after %d of %d entries: %w", i, len(entries), err)
		}

		orderID, err := uc.orders.PlaceOrder(ctx, cmd.Session, apporder.PlaceOrderInput{
			Garment:        entry.Garment,
			Size:           entry.Size,
			Shipping:       cmd.Shipping,
			IdempotencyKey: cartIdempotencyKey(entry.ID),
		})
		if err != nil {
			uc.fail(ctx, res, entry.ID, StagePlaceOrder, err)
			continue
		}
		res.OrderIDs = append(res.OrderIDs, orderID)

		// The order is written; finish its removal even if the caller has gone.
		err = uc.cart.RemoveFromCart(context.WithoutCancel(ctx), cmd.Session, entry.ID)
		switch {
		case err == nil, errors.Is(err, domain.ErrNotFound):
			uc.entries.Add(1, observability.L("result", "placed"))
			span.AddEvent("checkout.entry_placed", trace.WithAttributes(
				attribute.String("cart.entry_id", entry.ID),
				attribute.String("order.id", orderID),
			))
		default:
			uc.fail(ctx, res, entry.ID, StageRemoveEntry, err)
		}
	}

	if len(res.Failures) > 0 {
		inv.Fail("PARTIAL")
		return res, fmt.Errorf("%w: %d of %d entries failed", ErrPartialCheckout, len(res.Failures), len(entries))
	}
	return res, nil
}

func (uc *CheckoutCartUseCase) fail(ctx context.Context, res *CheckoutResult, entryID string, stage Stage, err error) {
	res.Failures = append(res.Failures, EntryFailure{EntryID: entryID, Stage: stage, Err: err})
	uc.entries.Add(1, observability.L("result", string(stage)+"_failed"))
	logctx.FromOr(ctx, uc.ins.Logger()).Warn("checkout_entry_failed",
		observability.F("entry_id", entryID),
		observability.F("stage", string(stage)),
		observability.Err(err),
	)
}
