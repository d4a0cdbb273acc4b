package order

import "context"

type Repository interface {
	// Insert appends o; a duplicate id or idempotency key yields ErrConflict.
	Insert(ctx context.Context, o *Order) error
	// ListByUser returns the user's orders oldest first.
	ListByUser(ctx context.Context, username string) ([]Order, error)
	FindByIdempotency(ctx context.Context, username, key string) (*Order, error)
}
