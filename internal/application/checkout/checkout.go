// Package checkout turns a user's selections into orders, either one garment
// at a time (buy now) or by draining the whole cart.
package checkout

import (
	"context"
	"errors"

	apporder "github.com/Zhima-Mochi/garmentshop/internal/application/order"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
)

const checkoutService = "checkout-service"

var (
	// ErrEmptyCart rejects a cart checkout with nothing to buy.
	ErrEmptyCart error = &domain.ValidationError{Field: "cart", Reason: "is empty"}
	// ErrPartialCheckout means at least one cart entry was not fully processed.
	// The accompanying CheckoutResult says which ones and why.
	ErrPartialCheckout = errors.New("checkout: partial")
)

// GarmentSource resolves catalog listings.
type GarmentSource interface {
	Garment(ctx context.Context, id string) (*domcatalog.Garment, error)
}

// CartLedger is the subset of the cart service checkout drives.
type CartLedger interface {
	ListCart(ctx context.Context, session domacct.Session) ([]domcart.Entry, error)
	RemoveFromCart(ctx context.Context, session domacct.Session, entryID string) error
}

// OrderLedger writes orders.
type OrderLedger interface {
	PlaceOrder(ctx context.Context, session domacct.Session, in apporder.PlaceOrderInput) (string, error)
}

// Stage names the step of a cart checkout an entry failed at.
type Stage string

const (
	StagePlaceOrder  Stage = "place_order"
	StageRemoveEntry Stage = "remove_entry"
)

// EntryFailure reports one cart entry that did not complete. After a
// StageRemoveEntry failure the order exists but the entry is still in the cart;
// checking out again replays the same order instead of placing a second one.
type EntryFailure struct {
	EntryID string
	Stage   Stage
	Err     error
}

// CheckoutResult lists the orders placed, in cart order, and the entries that
// failed.
type CheckoutResult struct {
	OrderIDs []string
	Failures []EntryFailure
}

// cartIdempotencyKey ties the order placed for a cart entry to that entry.
func cartIdempotencyKey(entryID string) string {
	return "cart:" + entryID
}
