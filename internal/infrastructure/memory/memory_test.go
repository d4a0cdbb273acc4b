package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
)

var hat = domcatalog.Garment{ID: "hat", Name: "Stylish Hat", Price: 3499, Category: "Accessories", Sizes: []string{"S", "M", "L"}}

func TestUserRepositoryUniqueUnderConcurrency(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Insert(ctx, &domacct.User{Username: "alice", PasswordHash: "h"})
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrDuplicateUser):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	_, err := repo.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGarmentRepositoryKeepsInsertionOrder(t *testing.T) {
	repo := NewGarmentRepository()
	ctx := context.Background()

	gs := domcatalog.DefaultGarments()
	for i := range gs {
		gs[i].ID = gs[i].Name
	}
	require.NoError(t, repo.InsertMany(ctx, gs))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(gs), n)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	for i := range gs {
		assert.Equal(t, gs[i].Name, list[i].Name)
	}

	list[0].Sizes[0] = "mutated"
	again, err := repo.FindByID(ctx, gs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "S", again.Sizes[0])

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)
	assert.Error(t, repo.InsertMany(ctx, gs[:1]))
}

func TestCartRepositoryDeleteIsOwnerScoped(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()

	e, err := domcart.NewEntry("e1", "alice", hat, "M")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, e))

	assert.ErrorIs(t, repo.Delete(ctx, "bob", "e1"), domcart.ErrEntryNotFound)
	require.NoError(t, repo.Delete(ctx, "alice", "e1"))
	assert.ErrorIs(t, repo.Delete(ctx, "alice", "e1"), domcart.ErrEntryNotFound)

	list, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrderRepositoryIdempotency(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	o1, err := domorder.New("o1", "alice", hat, "S", domorder.Shipping{}, "cart:e1")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, o1))

	o2, err := domorder.New("o2", "alice", hat, "S", domorder.Shipping{}, "cart:e1")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(ctx, o2), domorder.ErrConflict)

	other, err := domorder.New("o3", "bob", hat, "S", domorder.Shipping{}, "cart:e1")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, other))

	found, err := repo.FindByIdempotency(ctx, "alice", "cart:e1")
	require.NoError(t, err)
	assert.Equal(t, "o1", found.ID)

	_, err = repo.FindByIdempotency(ctx, "alice", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domorder.StatusPlaced, list[0].Status)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGarmentRepository().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, NewCartRepository().Delete(ctx, "a", "b"), context.Canceled)
}
