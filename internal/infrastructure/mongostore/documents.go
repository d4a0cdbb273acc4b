package mongostore

import (
	"slices"
	"time"

	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
)

type userDoc struct {
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) toDomain() *domacct.User {
	return &domacct.User{Username: d.Username, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt}
}

// garmentDoc is used both for catalog rows and for snapshots embedded in
// cart entries and orders.
type garmentDoc struct {
	ID         string   `bson:"_id,omitempty"`
	Position   int      `bson:"position,omitempty"`
	Name       string   `bson:"name"`
	PriceCents int64    `bson:"price_cents"`
	Category   string   `bson:"category"`
	ImageRef   string   `bson:"image_ref"`
	Sizes      []string `bson:"sizes"`
}

func fromGarment(g domcatalog.Garment) garmentDoc {
	return garmentDoc{
		ID:         g.ID,
		Name:       g.Name,
		PriceCents: int64(g.Price),
		Category:   g.Category,
		ImageRef:   g.ImageRef,
		Sizes:      slices.Clone(g.Sizes),
	}
}

func (d garmentDoc) toDomain() domcatalog.Garment {
	return domcatalog.Garment{
		ID:       d.ID,
		Name:     d.Name,
		Price:    domcatalog.Cents(d.PriceCents),
		Category: d.Category,
		ImageRef: d.ImageRef,
		Sizes:    slices.Clone(d.Sizes),
	}
}

// snapshotDoc nests the garment under its own id field, since _id is
// reserved for the owning document.
type snapshotDoc struct {
	GarmentID string     `bson:"garment_id"`
	Garment   garmentDoc `bson:"data"`
}

func snapshot(g domcatalog.Garment) snapshotDoc {
	d := fromGarment(g)
	d.ID = ""
	return snapshotDoc{GarmentID: g.ID, Garment: d}
}

func (s snapshotDoc) toDomain() domcatalog.Garment {
	g := s.Garment.toDomain()
	g.ID = s.GarmentID
	return g
}

type cartDoc struct {
	ID       string      `bson:"_id"`
	Username string      `bson:"username"`
	Garment  snapshotDoc `bson:"garment"`
	Size     string      `bson:"size"`
	AddedAt  time.Time   `bson:"added_at"`
	Seq      int64       `bson:"seq"`
}

func fromEntry(e *domcart.Entry) cartDoc {
	return cartDoc{
		ID:       e.ID,
		Username: e.Username,
		Garment:  snapshot(e.Garment),
		Size:     e.Size,
		AddedAt:  e.AddedAt,
		Seq:      e.AddedAt.UnixNano(),
	}
}

func (d cartDoc) toDomain() domcart.Entry {
	return domcart.Entry{
		ID:       d.ID,
		Username: d.Username,
		Garment:  d.Garment.toDomain(),
		Size:     d.Size,
		AddedAt:  d.AddedAt,
	}
}

type shippingDoc struct {
	Name    string `bson:"name"`
	Address string `bson:"address"`
	Phone   string `bson:"phone"`
}

type orderDoc struct {
	ID             string      `bson:"_id"`
	Username       string      `bson:"username"`
	Garment        snapshotDoc `bson:"garment"`
	Size           string      `bson:"size"`
	Shipping       shippingDoc `bson:"shipping"`
	Status         string      `bson:"status"`
	IdempotencyKey string      `bson:"idempotency_key,omitempty"`
	PlacedAt       time.Time   `bson:"placed_at"`
	Seq            int64       `bson:"seq"`
}

func fromOrder(o *domorder.Order) orderDoc {
	return orderDoc{
		ID:             o.ID,
		Username:       o.Username,
		Garment:        snapshot(o.Garment),
		Size:           o.Size,
		Shipping:       shippingDoc(o.Shipping),
		Status:         string(o.Status),
		IdempotencyKey: o.IdempotencyKey,
		PlacedAt:       o.PlacedAt,
		Seq:            o.PlacedAt.UnixNano(),
	}
}

func (d orderDoc) toDomain() domorder.Order {
	return domorder.Order{
		ID:             d.ID,
		Username:       d.Username,
		Garment:        d.Garment.toDomain(),
		Size:           d.Size,
		Shipping:       domorder.Shipping(d.Shipping),
		Status:         domorder.Status(d.Status),
		IdempotencyKey: d.IdempotencyKey,
		PlacedAt:       d.PlacedAt,
	}
}
