package cart

import "context"

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	// ListByUser returns the user's entries oldest first.
	ListByUser(ctx context.Context, username string) ([]Entry, error)
	// Delete removes the entry only if it belongs to username; otherwise ErrEntryNotFound.
	Delete(ctx context.Context, username, id string) error
}
