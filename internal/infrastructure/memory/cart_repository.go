package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
)

type CartRepository struct {
	mu      sync.RWMutex
	entries map[string]*domcart.Entry
	byUser  map[string][]string
}

func NewCartRepository() *CartRepository {
	return &CartRepository{
		entries: make(map[string]*domcart.Entry),
		byUser:  make(map[string][]string),
	}
}

func (r *CartRepository) Insert(ctx context.Context, entry *domcart.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("cart repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; exists {
		return fmt.Errorf("cart repository: duplicate id %q", entry.ID)
	}
	r.entries[entry.ID] = entry.Clone()
	r.byUser[entry.Username] = append(r.byUser[entry.Username], entry.ID)
	return nil
}

func (r *CartRepository) ListByUser(ctx context.Context, username string) ([]domcart.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[username]
	out := make([]domcart.Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.entries[id].Clone())
	}
	return out, nil
}

func (r *CartRepository) Delete(ctx context.Context, username, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.Username != username {
		return domcart.ErrEntryNotFound
	}
	delete(r.entries, id)
	r.byUser[username] = slices.DeleteFunc(r.byUser[username], func(v string) bool { return v == id })
	if len(r.byUser[username]) == 0 {
		delete(r.byUser, username)
	}
	return nil
}
