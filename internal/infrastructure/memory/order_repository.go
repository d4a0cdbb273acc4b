package memory

import (
	"context"
	"fmt"
	"sync"

	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
)

type OrderRepository struct {
	mu          sync.RWMutex
	orders      map[string]*domorder.Order
	byUser      map[string][]string
	idempotency map[string]string // username + "\x00" + key -> order id
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:      make(map[string]*domorder.Order),
		byUser:      make(map[string][]string),
		idempotency: make(map[string]string),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domorder.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domorder.ErrConflict
	}
	if key := order.IdempotencyKey; key != "" {
		if _, exists := r.idempotency[idemKey(order.Username, key)]; exists {
			return domorder.ErrConflict
		}
		r.idempotency[idemKey(order.Username, key)] = order.ID
	}

	r.orders[order.ID] = order.Clone()
	r.byUser[order.Username] = append(r.byUser[order.Username], order.ID)
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, username string) ([]domorder.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[username]
	out := make([]domorder.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.orders[id].Clone())
	}
	return out, nil
}

func (r *OrderRepository) FindByIdempotency(ctx context.Context, username, key string) (*domorder.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, domorder.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	orderID, ok := r.idempotency[idemKey(username, key)]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	order, found := r.orders[orderID]
	if !found {
		return nil, domorder.ErrNotFound
	}
	return order.Clone(), nil
}

func idemKey(username, key string) string {
	return username + "\x00" + key
}
