package estimate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

var (
	DefaultQuantity      = decimal.NewFromInt(1)
	DefaultMarkupPercent = decimal.NewFromInt(30)
)

// AddFromLibrary copies a library position with its components into an open
// revision. Component prices are snapshots of the cheapest active quote at
// the time of the copy, or the library defaults when nobody quotes.
func (s *EstimateService) AddFromLibrary(ctx context.Context, revisionID, libraryPositionID int64) (int64, error) {
	const op = "service.estimate.AddFromLibrary"

	rev, err := s.storage.GetRevision(ctx, revisionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckEditable(*rev); err != nil {
		return 0, err
	}

	lib, err := s.storage.GetLibraryPosition(ctx, libraryPositionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	pos, err := s.Instantiate(ctx, revisionID, lib)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// lock state and sort order are re-checked inside the insert transaction
	id, err := s.storage.CreatePosition(ctx, pos)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Instantiate builds the estimate line for a library position without
// persisting it. SortOrder is left for the storage to assign.
func (s *EstimateService) Instantiate(ctx context.Context, revisionID int64, lib *storage.LibraryPosition) (storage.EstimatePosition, error) {
	libID := lib.ID
	pos := storage.EstimatePosition{
		RevisionID:        revisionID,
		LibraryPositionID: &libID,
		Name:              lib.Name,
		Unit:              lib.Unit,
		Quantity:          DefaultQuantity,
		MarkupPercent:     DefaultMarkupPercent,
		Labor:             make([]storage.LaborComponent, len(lib.Labor)),
		Materials:         make([]storage.MaterialComponent, len(lib.Materials)),
	}

	for i, c := range lib.Labor {
		pos.Labor[i] = storage.LaborComponent{
			Description: c.Description,
			Unit:        c.Unit,
			Norm:        c.Norm,
			Rate:        c.DefaultRate,
		}
	}
	for i, c := range lib.Materials {
		pos.Materials[i] = storage.MaterialComponent{
			ProductID: c.ProductID,
			Name:      c.Name,
			Unit:      c.Unit,
			Norm:      c.Norm,
			UnitPrice: c.DefaultPrice,
		}
	}

	g, gCtx := errgroup.WithContext(ctx)

	if len(pos.Labor) > 0 {
		g.Go(func() error {
			res, ok, err := s.prices.ResolveCheapestSubcontractor(gCtx, lib.ID)
			if err != nil {
				return fmt.Errorf("labor rates: %w", err)
			}
			if !ok {
				return nil
			}
			for i := range pos.Labor {
				party := res.PartyID
				pos.Labor[i].SubcontractorID = &party
				pos.Labor[i].Rate = res.Price
			}
			return nil
		})
	}

	for i := range pos.Materials {
		m := &pos.Materials[i]
		if m.ProductID == nil {
			continue
		}
		g.Go(func() error {
			res, ok, err := s.prices.ResolveCheapestSupplier(gCtx, *m.ProductID)
			if err != nil {
				return fmt.Errorf("material %q prices: %w", m.Name, err)
			}
			if !ok {
				return nil
			}
			party := res.PartyID
			m.SupplierID = &party
			m.UnitPrice = res.Price
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return storage.EstimatePosition{}, err
	}
	return pos, nil
}

// AddManualPosition adds a free line with no library reference and no
// components.
func (s *EstimateService) AddManualPosition(ctx context.Context, revisionID int64, name, unit string, quantity decimal.Decimal) (int64, error) {
	const op = "service.estimate.AddManualPosition"

	if name == "" {
		return 0, storage.Invalid("name", "is required")
	}
	if !quantity.IsPositive() {
		return 0, storage.Invalid("quantity", "must be positive")
	}

	rev, err := s.storage.GetRevision(ctx, revisionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckEditable(*rev); err != nil {
		return 0, err
	}

	id, err := s.storage.CreatePosition(ctx, storage.EstimatePosition{
		RevisionID:    revisionID,
		Name:          name,
		Unit:          unit,
		Quantity:      quantity,
		MarkupPercent: DefaultMarkupPercent,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *EstimateService) UpdatePosition(ctx context.Context, id int64, upd storage.PositionUpdate) error {
	const op = "service.estimate.UpdatePosition"

	if upd.Quantity != nil && !upd.Quantity.IsPositive() {
		return storage.Invalid("quantity", "must be positive")
	}
	if upd.MarkupPercent != nil && upd.MarkupPercent.IsNegative() {
		return storage.Invalid("markup_percent", "must not be negative")
	}
	if upd.Name != nil && *upd.Name == "" {
		return storage.Invalid("name", "must not be empty")
	}

	if err := s.checkPositionEditable(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePosition(ctx, id, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *EstimateService) DeletePosition(ctx context.Context, id int64) error {
	const op = "service.estimate.DeletePosition"

	if err := s.checkPositionEditable(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeletePosition(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateMaterialComponent is how an unresolved component gets a supplier
// before draft generation.
func (s *EstimateService) UpdateMaterialComponent(ctx context.Context, positionID, componentID int64, upd storage.MaterialUpdate) error {
	const op = "service.estimate.UpdateMaterialComponent"

	if upd.UnitPrice != nil && upd.UnitPrice.IsNegative() {
		return storage.Invalid("unit_price", "must not be negative")
	}
	if upd.Norm != nil && !upd.Norm.IsPositive() {
		return storage.Invalid("norm", "must be positive")
	}

	pos, err := s.editablePosition(ctx, positionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !hasMaterial(pos, componentID) {
		return storage.NotFound("material component", componentID)
	}

	if err := s.storage.UpdateMaterialComponent(ctx, componentID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *EstimateService) UpdateLaborComponent(ctx context.Context, positionID, componentID int64, upd storage.LaborUpdate) error {
	const op = "service.estimate.UpdateLaborComponent"

	if upd.Rate != nil && upd.Rate.IsNegative() {
		return storage.Invalid("rate", "must not be negative")
	}
	if upd.Norm != nil && !upd.Norm.IsPositive() {
		return storage.Invalid("norm", "must be positive")
	}

	pos, err := s.editablePosition(ctx, positionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !hasLabor(pos, componentID) {
		return storage.NotFound("labor component", componentID)
	}

	if err := s.storage.UpdateLaborComponent(ctx, componentID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *EstimateService) checkPositionEditable(ctx context.Context, id int64) error {
	_, err := s.editablePosition(ctx, id)
	return err
}

func (s *EstimateService) editablePosition(ctx context.Context, id int64) (*storage.EstimatePosition, error) {
	pos, err := s.storage.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	rev, err := s.storage.GetRevision(ctx, pos.RevisionID)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckEditable(*rev); err != nil {
		return nil, err
	}
	return pos, nil
}

func hasMaterial(p *storage.EstimatePosition, id int64) bool {
	for _, m := range p.Materials {
		if m.ID == id {
			return true
		}
	}
	return false
}

func hasLabor(p *storage.EstimatePosition, id int64) bool {
	for _, l := range p.Labor {
		if l.ID == id {
			return true
		}
	}
	return false
}
