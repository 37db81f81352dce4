package pricing

import (
	"context"
	"fmt"

	"estimate-backend/internal/storage"
)

func (s *PriceService) AddSupplierPrice(ctx context.Context, p storage.NewSupplierPrice) (int64, error) {
	const op = "service.pricing.AddSupplierPrice"

	if p.SupplierID <= 0 {
		return 0, storage.Invalid("supplier_id", "is required")
	}
	if p.ProductID <= 0 {
		return 0, storage.Invalid("product_id", "is required")
	}
	if !p.Price.IsPositive() {
		return 0, storage.Invalid("price", "must be positive")
	}

	id, err := s.storage.CreateSupplierPrice(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *PriceService) AddSubcontractorRate(ctx context.Context, r storage.NewSubcontractorRate) (int64, error) {
	const op = "service.pricing.AddSubcontractorRate"

	if r.SubcontractorID <= 0 {
		return 0, storage.Invalid("subcontractor_id", "is required")
	}
	if r.LibraryPositionID <= 0 {
		return 0, storage.Invalid("library_position_id", "is required")
	}
	if !r.Rate.IsPositive() {
		return 0, storage.Invalid("rate", "must be positive")
	}

	id, err := s.storage.CreateSubcontractorRate(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *PriceService) SetSupplierPriceActive(ctx context.Context, id int64, active bool) error {
	if err := s.storage.SetSupplierPriceActive(ctx, id, active); err != nil {
		return fmt.Errorf("service.pricing.SetSupplierPriceActive: %w", err)
	}
	return nil
}

func (s *PriceService) SetSubcontractorRateActive(ctx context.Context, id int64, active bool) error {
	if err := s.storage.SetSubcontractorRateActive(ctx, id, active); err != nil {
		return fmt.Errorf("service.pricing.SetSubcontractorRateActive: %w", err)
	}
	return nil
}
