package storefront_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zhima-Mochi/garmentshop/internal/application/checkout"
	"github.com/Zhima-Mochi/garmentshop/internal/application/notification"
	"github.com/Zhima-Mochi/garmentshop/internal/application/storefront"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/id"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/password"
)

type confirmations chan notification.Confirmation

func (c confirmations) Notify(_ context.Context, n notification.Confirmation) error {
	c <- n
	return nil
}

func newStorefront(t *testing.T, deps storefront.Deps) *storefront.Storefront {
	t.Helper()
	deps.Repos = storefront.Repositories{
		Users:    memory.NewUserRepository(),
		Garments: memory.NewGarmentRepository(),
		Cart:     memory.NewCartRepository(),
		Orders:   memory.NewOrderRepository(),
	}
	deps.Hasher = password.NewBcrypt(bcrypt.MinCost)
	deps.IDs = id.NewUUIDGenerator()
	sf := storefront.New(deps)
	n, err := sf.SeedCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	return sf
}

func TestShopperJourney(t *testing.T) {
	ctx := context.Background()
	bus := outbox.NewBus(nil)
	inbox := make(confirmations, 4)
	notification.NewWorker(inbox, nil).Register(bus, nil)
	bus.Start(ctx)
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	sf := newStorefront(t, storefront.Deps{Publisher: bus})

	require.NoError(t, sf.Register(ctx, "frank", "hunter2"))
	assert.ErrorIs(t, sf.Register(ctx, "frank", "other"), domain.ErrDuplicateUser)
	_, err := sf.Authenticate(ctx, "frank", "Hunter2")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	session, err := sf.Authenticate(ctx, "frank", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "frank", session.Username)

	garments, err := sf.ListGarments(ctx)
	require.NoError(t, err)
	require.Len(t, garments, 5)
	tshirt := garments[0]
	assert.Equal(t, "Modern T-Shirt", tshirt.Name)
	assert.Equal(t, []string{"S", "M", "L", "XL"}, tshirt.Sizes)

	_, err = sf.AddToCart(ctx, session, tshirt.ID, "XXL")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = sf.AddToCart(ctx, session, tshirt.ID, "M")
	require.NoError(t, err)

	sum, err := sf.CartSummary(ctx, session)
	require.NoError(t, err)
	require.Len(t, sum.Entries, 1)
	assert.Equal(t, "M", sum.Entries[0].Size)
	assert.Equal(t, "29.99", sum.Total.String())

	ship := domorder.Shipping{Name: "Frank", Address: "3 Oak Ave", Phone: "555-0102"}
	res, err := sf.CheckoutCart(ctx, session, ship)
	require.NoError(t, err)
	require.Len(t, res.OrderIDs, 1)

	orders, err := sf.ListOrders(ctx, session)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domorder.StatusPlaced, orders[0].Status)
	assert.Equal(t, res.OrderIDs[0], orders[0].ID)

	cart, err := sf.ListCart(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, cart)

	got := <-inbox
	assert.Equal(t, res.OrderIDs[0], got.OrderID)
	assert.Equal(t, "frank", got.Username)

	buyID, err := sf.BuyNow(ctx, checkout.BuyNowCommand{Session: session, GarmentID: garments[1].ID, Size: "34", Shipping: ship})
	require.NoError(t, err)
	orders, err = sf.ListOrders(ctx, session)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, buyID, orders[1].ID)
	assert.Equal(t, buyID, (<-inbox).OrderID)
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	sf := newStorefront(t, storefront.Deps{})
	n, err := sf.SeedCatalog(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	garments, err := sf.ListGarments(context.Background())
	require.NoError(t, err)
	assert.Len(t, garments, 5)
}

func TestRemoveFromCartIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t, storefront.Deps{})
	require.NoError(t, sf.Register(ctx, "gina", "pw-gina"))
	require.NoError(t, sf.Register(ctx, "hank", "pw-hank"))
	gina, err := sf.Authenticate(ctx, "gina", "pw-gina")
	require.NoError(t, err)
	hank, err := sf.Authenticate(ctx, "hank", "pw-hank")
	require.NoError(t, err)

	garments, err := sf.ListGarments(ctx)
	require.NoError(t, err)
	entryID, err := sf.AddToCart(ctx, gina, garments[4].ID, "S")
	require.NoError(t, err)

	assert.ErrorIs(t, sf.RemoveFromCart(ctx, hank, entryID), domain.ErrNotFound)
	require.NoError(t, sf.RemoveFromCart(ctx, gina, entryID))
}

func TestStrictShipping(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t, storefront.Deps{RequireShipping: true})
	require.NoError(t, sf.Register(ctx, "ivy", "pw"))
	ivy, err := sf.Authenticate(ctx, "ivy", "pw")
	require.NoError(t, err)
	garments, err := sf.ListGarments(ctx)
	require.NoError(t, err)

	_, err = sf.BuyNow(ctx, checkout.BuyNowCommand{Session: ivy, GarmentID: garments[0].ID, Size: "S"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
