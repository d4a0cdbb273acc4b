package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogService = "catalog-service"
	useCaseSeed    = "catalog.seed"
	useCaseList    = "catalog.list"
	useCaseGet     = "catalog.get"
)

type Service struct {
	repo domcatalog.Repository
	ids  application.IDGenerator
	ins  application.Instruments
}

func NewService(repo domcatalog.Repository, ids application.IDGenerator, tel observability.Observability) *Service {
	return &Service{
		repo: repo,
		ids:  ids,
		ins:  application.NewInstruments(catalogService, tel),
	}
}

// SeedIfEmpty inserts defaults only when the store holds no garments and
// reports how many were inserted. Garments without an ID are given one.
func (s *Service) SeedIfEmpty(ctx context.Context, defaults []domcatalog.Garment) (inserted int, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseSeed, "SeedIfEmpty", attribute.Int("catalog.defaults", len(defaults)))
	defer func() {
		inv.Annotate(observability.F("inserted", inserted))
		inv.End(ctx, err)
	}()

	n, err := s.repo.Count(ctx)
	if err != nil {
		inv.Fail("REPO_COUNT_FAILED")
		return 0, domain.Persistence("garments.count", err)
	}
	if n > 0 || len(defaults) == 0 {
		inv.Status("ALREADY_SEEDED")
		return 0, nil
	}

	batch := make([]domcatalog.Garment, 0, len(defaults))
	for _, g := range defaults {
		g = g.Snapshot()
		if g.ID == "" {
			g.ID = s.ids.NewID()
		}
		if err := g.Validate(); err != nil {
			inv.Fail("DEFAULT_INVALID")
			return 0, fmt.Errorf("catalog: seed %q: %w", g.Name, err)
		}
		batch = append(batch, g)
	}

	if err := s.repo.InsertMany(ctx, batch); err != nil {
		inv.Fail("REPO_INSERT_FAILED")
		return 0, domain.Persistence("garments.insert_many", err)
	}
	return len(batch), nil
}

// ListGarments re-reads the store on every call.
func (s *Service) ListGarments(ctx context.Context) (_ []domcatalog.Garment, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseList, "ListGarments")
	defer func() { inv.End(ctx, err) }()

	garments, err := s.repo.List(ctx)
	if err != nil {
		inv.Fail("REPO_LIST_FAILED")
		return nil, domain.Persistence("garments.list", err)
	}
	inv.Annotate(observability.F("count", len(garments)))
	return garments, nil
}

// Garment resolves one listing; unknown ids fail with catalog.ErrNotFound.
func (s *Service) Garment(ctx context.Context, id string) (_ *domcatalog.Garment, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseGet, "Garment", attribute.String("garment.id", id))
	defer func() { inv.End(ctx, err) }()

	if id == "" {
		inv.Fail("GARMENT_NOT_FOUND")
		return nil, domcatalog.ErrNotFound
	}
	g, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		inv.Fail("GARMENT_NOT_FOUND")
		return nil, domcatalog.ErrNotFound
	case err != nil:
		inv.Fail("REPO_LOOKUP_FAILED")
		return nil, domain.Persistence("garments.find", err)
	}
	return g, nil
}
