package catalog

import "context"

type Repository interface {
	Count(ctx context.Context) (int64, error)
	// InsertMany stores garments; List returns them in insertion order.
	InsertMany(ctx context.Context, garments []Garment) error
	List(ctx context.Context) ([]Garment, error)
	FindByID(ctx context.Context, id string) (*Garment, error)
}
