package order

import (
	"fmt"
	"time"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	"github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
)

var (
	ErrNotFound = fmt.Errorf("order: %w", domain.ErrNotFound)
	// ErrConflict reports an insert whose id or idempotency key is already taken.
	ErrConflict = fmt.Errorf("order: conflict")
	// ErrIdempotencyMismatch rejects a key reused for a different garment or size.
	ErrIdempotencyMismatch error = &domain.ValidationError{Field: "idempotency_key", Reason: "was used for a different order"}
)

type Status string

const (
	StatusPlaced    Status = "Placed"
	StatusShipped   Status = "Shipped"
	StatusCancelled Status = "Cancelled"
)

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	switch s {
	case StatusPlaced, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// Shipping is the delivery contact captured at purchase time.
type Shipping struct {
	Name    string
	Address string
	Phone   string
}

// Validate requires every field. Callers opt into this; by default blank
// shipping details are accepted.
func (s Shipping) Validate() error {
	switch {
	case s.Name == "":
		return domain.Invalid("shipping.name", "is required")
	case s.Address == "":
		return domain.Invalid("shipping.address", "is required")
	case s.Phone == "":
		return domain.Invalid("shipping.phone", "is required")
	}
	return nil
}

// Order is an immutable purchase record holding its own garment snapshot.
type Order struct {
	ID             string
	Username       string
	Garment        catalog.Garment
	Size           string
	Shipping       Shipping
	Status         Status
	IdempotencyKey string
	PlacedAt       time.Time
}

func New(id, username string, garment catalog.Garment, size string, shipping Shipping, idempotencyKey string) (*Order, error) {
	if id == "" {
		return nil, domain.Invalid("id", "is required")
	}
	if username == "" {
		return nil, domain.Invalid("username", "is required")
	}
	if err := garment.CheckSize(size); err != nil {
		return nil, err
	}
	return &Order{
		ID:             id,
		Username:       username,
		Garment:        garment.Snapshot(),
		Size:           size,
		Shipping:       shipping,
		Status:         StatusPlaced,
		IdempotencyKey: idempotencyKey,
		PlacedAt:       time.Now().UTC(),
	}, nil
}

// SamePurchase reports whether o bought garmentID in size. Shipping is not
// compared so a retried checkout may correct the address.
func (o *Order) SamePurchase(garmentID, size string) bool {
	return o.Garment.ID == garmentID && o.Size == size
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Garment = o.Garment.Snapshot()
	return &c
}
