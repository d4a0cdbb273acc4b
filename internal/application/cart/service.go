package cart

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	cartService      = "cart-service"
	useCaseAdd       = "cart.add"
	useCaseList      = "cart.list"
	useCaseRemove    = "cart.remove"
	useCaseSummarize = "cart.summary"
)

// GarmentSource resolves catalog listings for snapshotting.
type GarmentSource interface {
	Garment(ctx context.Context, id string) (*domcatalog.Garment, error)
}

// CartSummary is a cart listing with its total price.
type CartSummary struct {
	Entries []domcart.Entry
	Total   domcatalog.Cents
}

// Service is the cart ledger: per-user pending selections.
type Service struct {
	repo     domcart.Repository
	garments GarmentSource
	ids      application.IDGenerator
	ins      application.Instruments
}

func NewService(repo domcart.Repository, garments GarmentSource, ids application.IDGenerator, tel observability.Observability) *Service {
	return &Service{
		repo:     repo,
		garments: garments,
		ids:      ids,
		ins:      application.NewInstruments(cartService, tel),
	}
}

// AddToCart stores a snapshot of the garment as it is now, in the given size.
func (s *Service) AddToCart(ctx context.Context, session domacct.Session, garmentID, size string) (entryID string, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseAdd, "AddToCart",
		attribute.String("garment.id", garmentID),
		attribute.String("cart.size", size),
	)
	defer func() {
		if entryID != "" {
			inv.Annotate(observability.F("entry_id", entryID))
		}
		inv.End(ctx, err)
	}()

	if err := session.Require(); err != nil {
		inv.Fail("SESSION_REQUIRED")
		return "", err
	}
	if size == "" {
		inv.Fail("SIZE_REQUIRED")
		return "", domain.Invalid("size", "is required")
	}

	garment, err := s.garments.Garment(ctx, garmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			inv.Fail("GARMENT_NOT_FOUND")
		} else {
			inv.Fail("GARMENT_LOOKUP_FAILED")
		}
		return "", err
	}

	entry, err := domcart.NewEntry(s.ids.NewID(), session.Username, *garment, size)
	if err != nil {
		inv.Fail("SIZE_INVALID")
		return "", err
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		inv.Fail("REPO_INSERT_FAILED")
		return "", domain.Persistence("cart_entries.insert", err)
	}
	return entry.ID, nil
}

// ListCart returns the session user's entries, oldest first.
func (s *Service) ListCart(ctx context.Context, session domacct.Session) (_ []domcart.Entry, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseList, "ListCart")
	defer func() { inv.End(ctx, err) }()

	entries, err := s.list(ctx, session)
	if err != nil {
		inv.Fail("LIST_FAILED")
		return nil, err
	}
	inv.Annotate(observability.F("count", len(entries)))
	return entries, nil
}

// RemoveFromCart deletes one of the session user's entries. An id that is
// absent, or owned by someone else, fails with cart.ErrEntryNotFound.
func (s *Service) RemoveFromCart(ctx context.Context, session domacct.Session, entryID string) (err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseRemove, "RemoveFromCart", attribute.String("cart.entry_id", entryID))
	defer func() { inv.End(ctx, err) }()

	if err := session.Require(); err != nil {
		inv.Fail("SESSION_REQUIRED")
		return err
	}
	if entryID == "" {
		inv.Fail("ENTRY_ID_REQUIRED")
		return domcart.ErrEntryNotFound
	}

	if err := s.repo.Delete(ctx, session.Username, entryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			inv.Fail("ENTRY_NOT_FOUND")
			return domcart.ErrEntryNotFound
		}
		inv.Fail("REPO_DELETE_FAILED")
		return domain.Persistence("cart_entries.delete", err)
	}
	return nil
}

// Summary lists the cart together with the sum of its snapshot prices.
func (s *Service) Summary(ctx context.Context, session domacct.Session) (_ CartSummary, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseSummarize, "Summary")
	defer func() { inv.End(ctx, err) }()

	entries, err := s.list(ctx, session)
	if err != nil {
		inv.Fail("LIST_FAILED")
		return CartSummary{}, err
	}
	total := domcart.Total(entries)
	inv.Annotate(
		observability.F("count", len(entries)),
		observability.F("total", total.String()),
	)
	return CartSummary{Entries: entries, Total: total}, nil
}

func (s *Service) list(ctx context.Context, session domacct.Session) ([]domcart.Entry, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByUser(ctx, session.Username)
	if err != nil {
		return nil, domain.Persistence("cart_entries.list", err)
	}
	return entries, nil
}
