package cart

import (
	"fmt"
	"time"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	"github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
)

var ErrEntryNotFound = fmt.Errorf("cart: entry %w", domain.ErrNotFound)

// Entry is one pending selection. Garment is a snapshot taken when the entry
// was created, not a live catalog reference.
type Entry struct {
	ID       string
	Username string
	Garment  catalog.Garment
	Size     string
	AddedAt  time.Time
}

// NewEntry snapshots g and checks that size is one of its sizes.
func NewEntry(id, username string, g catalog.Garment, size string) (*Entry, error) {
	if id == "" {
		return nil, domain.Invalid("id", "is required")
	}
	if username == "" {
		return nil, domain.Invalid("username", "is required")
	}
	if err := g.CheckSize(size); err != nil {
		return nil, err
	}
	return &Entry{
		ID:       id,
		Username: username,
		Garment:  g.Snapshot(),
		Size:     size,
		AddedAt:  time.Now().UTC(),
	}, nil
}

func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Garment = e.Garment.Snapshot()
	return &c
}

// Total sums the snapshot prices of entries.
func Total(entries []Entry) catalog.Cents {
	var sum catalog.Cents
	for _, e := range entries {
		sum += e.Garment.Price
	}
	return sum
}
