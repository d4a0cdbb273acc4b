package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
)

type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Insert(ctx context.Context, user *domacct.User) error {
	_, err := r.coll.InsertOne(ctx, userDoc{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domacct.ErrDuplicateUser
	}
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domacct.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domacct.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return doc.toDomain(), nil
}

type GarmentRepository struct {
	coll *mongo.Collection
}

func (r *GarmentRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("garments: count: %w", err)
	}
	return n, nil
}

// InsertMany writes garments in one ordered batch, numbering them so List
// can return them in the same order.
func (r *GarmentRepository) InsertMany(ctx context.Context, garments []domcatalog.Garment) error {
	if len(garments) == 0 {
		return nil
	}
	docs := make([]any, 0, len(garments))
	for i, g := range garments {
		d := fromGarment(g)
		d.Position = i + 1
		docs = append(docs, d)
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("garments: insert many: %w", err)
	}
	return nil
}

func (r *GarmentRepository) List(ctx context.Context) ([]domcatalog.Garment, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("garments: find: %w", err)
	}
	var docs []garmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("garments: decode: %w", err)
	}
	out := make([]domcatalog.Garment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *GarmentRepository) FindByID(ctx context.Context, id string) (*domcatalog.Garment, error) {
	var doc garmentDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domcatalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("garments: find: %w", err)
	}
	g := doc.toDomain()
	return &g, nil
}

type CartRepository struct {
	coll *mongo.Collection
}

func (r *CartRepository) Insert(ctx context.Context, entry *domcart.Entry) error {
	if _, err := r.coll.InsertOne(ctx, fromEntry(entry)); err != nil {
		return fmt.Errorf("cart_entries: insert: %w", err)
	}
	return nil
}

func (r *CartRepository) ListByUser(ctx context.Context, username string) ([]domcart.Entry, error) {
	cur, err := r.coll.Find(ctx,
		bson.D{{Key: "username", Value: username}},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("cart_entries: find: %w", err)
	}
	var docs []cartDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cart_entries: decode: %w", err)
	}
	out := make([]domcart.Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Delete matches on both id and owner, so another user's entry id behaves
// like a missing one.
func (r *CartRepository) Delete(ctx context.Context, username, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "username", Value: username}})
	if err != nil {
		return fmt.Errorf("cart_entries: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domcart.ErrEntryNotFound
	}
	return nil
}

type OrderRepository struct {
	coll *mongo.Collection
}

func (r *OrderRepository) Insert(ctx context.Context, o *domorder.Order) error {
	_, err := r.coll.InsertOne(ctx, fromOrder(o))
	if mongo.IsDuplicateKeyError(err) {
		return domorder.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("orders: insert: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, username string) ([]domorder.Order, error) {
	cur, err := r.coll.Find(ctx,
		bson.D{{Key: "username", Value: username}},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("orders: find: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	out := make([]domorder.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *OrderRepository) FindByIdempotency(ctx context.Context, username, key string) (*domorder.Order, error) {
	if key == "" {
		return nil, domorder.ErrNotFound
	}
	var doc orderDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "username", Value: username}, {Key: "idempotency_key", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domorder.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: find by idempotency: %w", err)
	}
	o := doc.toDomain()
	return &o, nil
}
