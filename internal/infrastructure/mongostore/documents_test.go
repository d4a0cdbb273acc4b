package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
)

var hat = domcatalog.Garment{ID: "g-hat", Name: "Stylish Hat", Price: 3499, Category: "Accessories", ImageRef: "hat.jpg", Sizes: []string{"S", "M", "L"}}

func TestOrderDocRoundTripThroughBSON(t *testing.T) {
	o, err := domorder.New("o-1", "lee", hat, "M", domorder.Shipping{Name: "Lee", Address: "4 Pine Rd", Phone: "555"}, "cart:e-1")
	require.NoError(t, err)
	o.PlacedAt = o.PlacedAt.Truncate(time.Millisecond)

	raw, err := bson.Marshal(fromOrder(o))
	require.NoError(t, err)

	doc := bson.Raw(raw)
	assert.Equal(t, "o-1", doc.Lookup("_id").StringValue())
	assert.Equal(t, "cart:e-1", doc.Lookup("idempotency_key").StringValue())
	assert.Equal(t, "g-hat", doc.Lookup("garment", "garment_id").StringValue())
	assert.Equal(t, int64(3499), doc.Lookup("garment", "data", "price_cents").Int64())
	_, err = doc.LookupErr("garment", "data", "_id")
	assert.Error(t, err)

	var back orderDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	got := back.toDomain()
	assert.Equal(t, o.Garment, got.Garment)
	assert.Equal(t, o.Shipping, got.Shipping)
	assert.Equal(t, domorder.StatusPlaced, got.Status)
	assert.True(t, o.PlacedAt.Equal(got.PlacedAt))
}

func TestOrderDocOmitsEmptyIdempotencyKey(t *testing.T) {
	o, err := domorder.New("o-2", "lee", hat, "S", domorder.Shipping{}, "")
	require.NoError(t, err)
	raw, err := bson.Marshal(fromOrder(o))
	require.NoError(t, err)
	_, err = bson.Raw(raw).LookupErr("idempotency_key")
	assert.Error(t, err)
}

func TestSnapshotDetachesSizes(t *testing.T) {
	g := hat.Snapshot()
	d := snapshot(g)
	g.Sizes[0] = "XXL"
	assert.Equal(t, "S", d.toDomain().Sizes[0])
}

// The tests below run against a live server when SHOP_TEST_MONGO_URI is set.
func liveStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("SHOP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SHOP_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, uri, "garmentshop_test_"+time.Now().Format("150405000"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func TestLiveUsersUnique(t *testing.T) {
	s := liveStore(t)
	ctx := context.Background()
	u, err := domacct.NewUser("mo", "hash")
	require.NoError(t, err)

	require.NoError(t, s.Users().Insert(ctx, u))
	assert.ErrorIs(t, s.Users().Insert(ctx, u), domain.ErrDuplicateUser)

	got, err := s.Users().FindByUsername(ctx, "mo")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)
	_, err = s.Users().FindByUsername(ctx, "MO")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLiveCatalogAndCart(t *testing.T) {
	s := liveStore(t)
	ctx := context.Background()
	defaults := domcatalog.DefaultGarments()
	for i := range defaults {
		defaults[i].ID = defaults[i].Name
	}
	require.NoError(t, s.Garments().InsertMany(ctx, defaults))

	list, err := s.Garments().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(defaults))
	assert.Equal(t, defaults, list)

	e1, err := domcart.NewEntry("e-1", "mo", list[0], "M")
	require.NoError(t, err)
	e2, err := domcart.NewEntry("e-2", "mo", list[1], "30")
	require.NoError(t, err)
	require.NoError(t, s.Cart().Insert(ctx, e1))
	require.NoError(t, s.Cart().Insert(ctx, e2))

	entries, err := s.Cart().ListByUser(ctx, "mo")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e-1", entries[0].ID)
	assert.Equal(t, list[0], entries[0].Garment)

	assert.ErrorIs(t, s.Cart().Delete(ctx, "someone", "e-1"), domain.ErrNotFound)
	require.NoError(t, s.Cart().Delete(ctx, "mo", "e-1"))
	assert.ErrorIs(t, s.Cart().Delete(ctx, "mo", "e-1"), domain.ErrNotFound)
}

func TestLiveOrderIdempotency(t *testing.T) {
	s := liveStore(t)
	ctx := context.Background()
	o1, err := domorder.New("o-1", "mo", hat, "L", domorder.Shipping{}, "cart:e-9")
	require.NoError(t, err)
	o2, err := domorder.New("o-2", "mo", hat, "L", domorder.Shipping{}, "cart:e-9")
	require.NoError(t, err)
	o3, err := domorder.New("o-3", "mo", hat, "L", domorder.Shipping{}, "")
	require.NoError(t, err)
	o4, err := domorder.New("o-4", "mo", hat, "S", domorder.Shipping{}, "")
	require.NoError(t, err)

	require.NoError(t, s.Orders().Insert(ctx, o1))
	assert.ErrorIs(t, s.Orders().Insert(ctx, o2), domorder.ErrConflict)
	require.NoError(t, s.Orders().Insert(ctx, o3))
	require.NoError(t, s.Orders().Insert(ctx, o4))

	found, err := s.Orders().FindByIdempotency(ctx, "mo", "cart:e-9")
	require.NoError(t, err)
	assert.Equal(t, "o-1", found.ID)

	orders, err := s.Orders().ListByUser(ctx, "mo")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}
