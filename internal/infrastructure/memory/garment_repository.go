package memory

import (
	"context"
	"fmt"
	"sync"

	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
)

type GarmentRepository struct {
	mu       sync.RWMutex
	garments map[string]*domcatalog.Garment
	order    []string
}

func NewGarmentRepository() *GarmentRepository {
	return &GarmentRepository{
		garments: make(map[string]*domcatalog.Garment),
	}
}

func (r *GarmentRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.order)), nil
}

// InsertMany is all-or-nothing: a duplicate id rejects the whole batch.
func (r *GarmentRepository) InsertMany(ctx context.Context, garments []domcatalog.Garment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range garments {
		if g.ID == "" {
			return fmt.Errorf("garment repository: id is required")
		}
		if _, exists := r.garments[g.ID]; exists {
			return fmt.Errorf("garment repository: duplicate id %q", g.ID)
		}
	}
	for _, g := range garments {
		snap := g.Snapshot()
		r.garments[g.ID] = &snap
		r.order = append(r.order, g.ID)
	}
	return nil
}

func (r *GarmentRepository) List(ctx context.Context) ([]domcatalog.Garment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domcatalog.Garment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.garments[id].Snapshot())
	}
	return out, nil
}

func (r *GarmentRepository) FindByID(ctx context.Context, id string) (*domcatalog.Garment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.garments[id]
	if !ok {
		return nil, domcatalog.ErrNotFound
	}
	snap := g.Snapshot()
	return &snap, nil
}

// Replace overwrites a stored garment, standing in for catalog maintenance
// done outside the shop service.
func (r *GarmentRepository) Replace(ctx context.Context, g domcatalog.Garment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.garments[g.ID]; !ok {
		return domcatalog.ErrNotFound
	}
	snap := g.Snapshot()
	r.garments[g.ID] = &snap
	return nil
}
