package checkout

import (
	"context"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	apporder "github.com/Zhima-Mochi/garmentshop/internal/application/order"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseBuyNow = "checkout.buy_now"

type BuyNowCommand struct {
	Session   domacct.Session
	GarmentID string
	Size      string
	Shipping  domorder.Shipping
	// IdempotencyKey is optional; clients set it to retry safely.
	IdempotencyKey string
}

// BuyNowUseCase orders a single garment without touching the cart.
type BuyNowUseCase struct {
	garments GarmentSource
	orders   OrderLedger
	ins      application.Instruments
}

var _ application.UseCase[BuyNowCommand, string] = (*BuyNowUseCase)(nil)

func NewBuyNowUseCase(garments GarmentSource, orders OrderLedger, tel observability.Observability) *BuyNowUseCase {
	return &BuyNowUseCase{
		garments: garments,
		orders:   orders,
		ins:      application.NewInstruments(checkoutService, tel),
	}
}

// Execute returns the new order's id.
func (uc *BuyNowUseCase) Execute(ctx context.Context, cmd BuyNowCommand) (orderID string, err error) {
	ctx, inv := uc.ins.Begin(ctx, useCaseBuyNow, "BuyNow",
		attribute.String("garment.id", cmd.GarmentID),
		attribute.String("order.size", cmd.Size),
	)
	defer func() {
		if orderID != "" {
			inv.Annotate(observability.F("order_id", orderID))
		}
		inv.End(ctx, err)
	}()

	if err := cmd.Session.Require(); err != nil {
		inv.Fail("SESSION_REQUIRED")
		return "", err
	}
	if cmd.Size == "" {
		inv.Fail("SIZE_REQUIRED")
		return "", domain.Invalid("size", "is required")
	}

	garment, err := uc.garments.Garment(ctx, cmd.GarmentID)
	if err != nil {
		inv.Fail("GARMENT_LOOKUP_FAILED")
		return "", err
	}
	if err := garment.CheckSize(cmd.Size); err != nil {
		inv.Fail("SIZE_INVALID")
		return "", err
	}

	orderID, err = uc.orders.PlaceOrder(ctx, cmd.Session, apporder.PlaceOrderInput{
		Garment:        *garment,
		Size:           cmd.Size,
		Shipping:       cmd.Shipping,
		IdempotencyKey: cmd.IdempotencyKey,
	})
	if err != nil {
		inv.Fail("PLACE_ORDER_FAILED")
		return "", err
	}
	return orderID, nil
}
