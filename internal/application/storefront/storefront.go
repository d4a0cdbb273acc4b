// Package storefront is the boundary the transports call: one method per
// shopper-facing operation, each taking the caller's Session where the
// operation is user-scoped.
package storefront

import (
	"context"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	appaccount "github.com/Zhima-Mochi/garmentshop/internal/application/account"
	appcart "github.com/Zhima-Mochi/garmentshop/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/garmentshop/internal/application/catalog"
	"github.com/Zhima-Mochi/garmentshop/internal/application/checkout"
	apporder "github.com/Zhima-Mochi/garmentshop/internal/application/order"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
)

// Repositories are the stores behind each ledger.
type Repositories struct {
	Users    domacct.Repository
	Garments domcatalog.Repository
	Cart     domcart.Repository
	Orders   domorder.Repository
}

type Deps struct {
	Repos     Repositories
	Hasher    domacct.PasswordHasher
	IDs       application.IDGenerator
	Publisher domoutbox.Publisher
	Telemetry observability.Observability
	// RequireShipping rejects orders with blank shipping fields.
	RequireShipping bool
}

type Storefront struct {
	accounts     *appaccount.Service
	catalog      *appcatalog.Service
	cart         *appcart.Service
	orders       *apporder.Service
	buyNow       *checkout.BuyNowUseCase
	checkoutCart *checkout.CheckoutCartUseCase
}

func New(d Deps) *Storefront {
	catalog := appcatalog.NewService(d.Repos.Garments, d.IDs, d.Telemetry)
	cart := appcart.NewService(d.Repos.Cart, catalog, d.IDs, d.Telemetry)
	orders := apporder.NewService(d.Repos.Orders, d.IDs, d.Telemetry,
		apporder.WithPublisher(d.Publisher),
		apporder.WithRequiredShipping(d.RequireShipping),
	)
	return &Storefront{
		accounts:     appaccount.NewService(d.Repos.Users, d.Hasher, d.IDs, d.Telemetry),
		catalog:      catalog,
		cart:         cart,
		orders:       orders,
		buyNow:       checkout.NewBuyNowUseCase(catalog, orders, d.Telemetry),
		checkoutCart: checkout.NewCheckoutCartUseCase(cart, orders, d.Telemetry),
	}
}

func (s *Storefront) Register(ctx context.Context, username, password string) error {
	return s.accounts.Register(ctx, username, password)
}

func (s *Storefront) Authenticate(ctx context.Context, username, password string) (domacct.Session, error) {
	return s.accounts.Authenticate(ctx, username, password)
}

// SeedCatalog loads the default garments into an empty store.
func (s *Storefront) SeedCatalog(ctx context.Context) (int, error) {
	return s.catalog.SeedIfEmpty(ctx, domcatalog.DefaultGarments())
}

func (s *Storefront) ListGarments(ctx context.Context) ([]domcatalog.Garment, error) {
	return s.catalog.ListGarments(ctx)
}

func (s *Storefront) AddToCart(ctx context.Context, session domacct.Session, garmentID, size string) (string, error) {
	return s.cart.AddToCart(ctx, session, garmentID, size)
}

func (s *Storefront) ListCart(ctx context.Context, session domacct.Session) ([]domcart.Entry, error) {
	return s.cart.ListCart(ctx, session)
}

func (s *Storefront) CartSummary(ctx context.Context, session domacct.Session) (appcart.CartSummary, error) {
	return s.cart.Summary(ctx, session)
}

func (s *Storefront) RemoveFromCart(ctx context.Context, session domacct.Session, entryID string) error {
	return s.cart.RemoveFromCart(ctx, session, entryID)
}

func (s *Storefront) BuyNow(ctx context.Context, cmd checkout.BuyNowCommand) (string, error) {
	return s.buyNow.Execute(ctx, cmd)
}

func (s *Storefront) CheckoutCart(ctx context.Context, session domacct.Session, shipping domorder.Shipping) (*checkout.CheckoutResult, error) {
	return s.checkoutCart.Execute(ctx, checkout.CheckoutCartCommand{Session: session, Shipping: shipping})
}

func (s *Storefront) ListOrders(ctx context.Context, session domacct.Session) ([]domorder.Order, error) {
	return s.orders.ListOrders(ctx, session)
}
