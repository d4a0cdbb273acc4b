// Package mongostore keeps users, garments, cart entries and orders in MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers    = "users"
	collGarments = "garments"
	collCart     = "cart_entries"
	collOrders   = "orders"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and selects database db.
func Connect(ctx context.Context, uri, db string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	return &Store{client: client, db: client.Database(db)}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// username index is what makes concurrent registrations safe.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
		},
		collGarments: {
			{Keys: bson.D{{Key: "position", Value: 1}}, Options: options.Index().SetName("position")},
		},
		collCart: {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "seq", Value: 1}}, Options: options.Index().SetName("username_seq")},
		},
		collOrders: {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "seq", Value: 1}}, Options: options.Index().SetName("username_seq")},
			{
				Keys: bson.D{{Key: "username", Value: 1}, {Key: "idempotency_key", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("idempotency_unique").
					SetPartialFilterExpression(bson.D{{Key: "idempotency_key", Value: bson.D{{Key: "$gt", Value: ""}}}}),
			},
		},
	}
	for coll, models := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongostore: ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{coll: s.db.Collection(collUsers)}
}

func (s *Store) Garments() *GarmentRepository {
	return &GarmentRepository{coll: s.db.Collection(collGarments)}
}

func (s *Store) Cart() *CartRepository {
	return &CartRepository{coll: s.db.Collection(collCart)}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{coll: s.db.Collection(collOrders)}
}
