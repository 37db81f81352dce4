package mysql

import (
	"context"
	"fmt"

	"estimate-backend/internal/storage"
)

func (s *Storage) GetSupplierPrices(ctx context.Context, productID int64) ([]storage.PriceEntry, error) {
	const op = "storage.mysql.GetSupplierPrices"

	entries, err := s.priceEntries(ctx,
		`SELECT id, supplier_id, product_id, price, active FROM supplier_prices WHERE product_id = ?`, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func (s *Storage) GetSubcontractorRates(ctx context.Context, libraryPositionID int64) ([]storage.PriceEntry, error) {
	const op = "storage.mysql.GetSubcontractorRates"

	entries, err := s.priceEntries(ctx,
		`SELECT id, subcontractor_id, library_position_id, rate, active FROM subcontractor_rates WHERE library_position_id = ?`,
		libraryPositionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func (s *Storage) priceEntries(ctx context.Context, query string, id int64) ([]storage.PriceEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.PriceEntry, 0)
	for rows.Next() {
		var e storage.PriceEntry
		if err := rows.Scan(&e.ID, &e.PartyID, &e.SubjectID, &e.Price, &e.Active); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Storage) CreateSupplierPrice(ctx context.Context, p storage.NewSupplierPrice) (int64, error) {
	const op = "storage.mysql.CreateSupplierPrice"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO supplier_prices (supplier_id, product_id, price) VALUES (?, ?, ?)`,
		p.SupplierID, p.ProductID, p.Price)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err, "supplier price"))
	}
	return res.LastInsertId()
}

func (s *Storage) CreateSubcontractorRate(ctx context.Context, r storage.NewSubcontractorRate) (int64, error) {
	const op = "storage.mysql.CreateSubcontractorRate"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subcontractor_rates (subcontractor_id, library_position_id, rate) VALUES (?, ?, ?)`,
		r.SubcontractorID, r.LibraryPositionID, r.Rate)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err, "subcontractor rate"))
	}
	return res.LastInsertId()
}

func (s *Storage) SetSupplierPriceActive(ctx context.Context, id int64, active bool) error {
	return s.setActive(ctx, "storage.mysql.SetSupplierPriceActive",
		`UPDATE supplier_prices SET active = ? WHERE id = ?`, "supplier price", id, active)
}

func (s *Storage) SetSubcontractorRateActive(ctx context.Context, id int64, active bool) error {
	return s.setActive(ctx, "storage.mysql.SetSubcontractorRateActive",
		`UPDATE subcontractor_rates SET active = ? WHERE id = ?`, "subcontractor rate", id, active)
}

func (s *Storage) setActive(ctx context.Context, op, query, entity string, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.NotFound(entity, id)
	}
	return nil
}
