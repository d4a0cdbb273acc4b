package catalog

import (
	"fmt"
	"slices"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
)

var ErrNotFound = fmt.Errorf("catalog: garment %w", domain.ErrNotFound)

// Cents is a price in the smallest currency unit.
type Cents int64

// String renders the amount as a decimal with two places, e.g. "29.99".
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Garment is a catalog listing. ImageRef is a locator, never image data.
type Garment struct {
	ID       string
	Name     string
	Price    Cents
	Category string
	ImageRef string
	Sizes    []string
}

// Validate checks the listing invariants: a name, a non-negative price and a
// non-empty set of distinct size labels.
func (g Garment) Validate() error {
	if g.Name == "" {
		return domain.Invalid("name", "is required")
	}
	if g.Price < 0 {
		return domain.Invalid("price", "must be zero or greater")
	}
	if len(g.Sizes) == 0 {
		return domain.Invalid("sizes", "must not be empty")
	}
	seen := make(map[string]struct{}, len(g.Sizes))
	for _, s := range g.Sizes {
		if s == "" {
			return domain.Invalid("sizes", "must not contain blank labels")
		}
		if _, dup := seen[s]; dup {
			return domain.Invalid("sizes", fmt.Sprintf("contains %q twice", s))
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Offers reports whether size is one of the garment's size labels.
func (g Garment) Offers(size string) bool {
	return slices.Contains(g.Sizes, size)
}

// CheckSize is the selection rule shared by add-to-cart and buy-now.
func (g Garment) CheckSize(size string) error {
	if size == "" {
		return domain.Invalid("size", "is required")
	}
	if !g.Offers(size) {
		return domain.Invalid("size", fmt.Sprintf("%q is not offered for %s", size, g.Name))
	}
	return nil
}

// Snapshot returns a deep copy suitable for embedding in cart entries and
// orders; later catalog changes never reach it.
func (g Garment) Snapshot() Garment {
	g.Sizes = slices.Clone(g.Sizes)
	return g
}
