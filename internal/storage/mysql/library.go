package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"estimate-backend/internal/storage"
)

func (s *Storage) GetLibraryPosition(ctx context.Context, id int64) (*storage.LibraryPosition, error) {
	const op = "storage.mysql.GetLibraryPosition"

	var lp storage.LibraryPosition
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, unit, type FROM library_positions WHERE id = ?`, id).
		Scan(&lp.ID, &lp.Code, &lp.Name, &lp.Unit, &lp.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("library position", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lp.Labor, err = s.libraryLabor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: labor: %w", op, err)
	}
	lp.Materials, err = s.libraryMaterials(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: materials: %w", op, err)
	}
	return &lp, nil
}

func (s *Storage) libraryLabor(ctx context.Context, positionID int64) ([]storage.LibraryLaborComponent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, unit, norm, default_rate
		FROM library_labor_components
		WHERE library_position_id = ?
		ORDER BY sort_order, id`, positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.LibraryLaborComponent, 0)
	for rows.Next() {
		var c storage.LibraryLaborComponent
		if err := rows.Scan(&c.ID, &c.Description, &c.Unit, &c.Norm, &c.DefaultRate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Storage) libraryMaterials(ctx context.Context, positionID int64) ([]storage.LibraryMaterialComponent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, name, unit, norm, default_price
		FROM library_material_components
		WHERE library_position_id = ?
		ORDER BY sort_order, id`, positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.LibraryMaterialComponent, 0)
	for rows.Next() {
		var (
			c       storage.LibraryMaterialComponent
			product sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &product, &c.Name, &c.Unit, &c.Norm, &c.DefaultPrice); err != nil {
			return nil, err
		}
		c.ProductID = intPtr(product)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetLibraryPositions lists library positions without components, optionally
// filtered by type.
func (s *Storage) GetLibraryPositions(ctx context.Context, typ string) ([]storage.LibraryPosition, error) {
	const op = "storage.mysql.GetLibraryPositions"

	query := `SELECT id, code, name, unit, type FROM library_positions`
	var args []any
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY code`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]storage.LibraryPosition, 0)
	for rows.Next() {
		var lp storage.LibraryPosition
		if err := rows.Scan(&lp.ID, &lp.Code, &lp.Name, &lp.Unit, &lp.Type); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *Storage) GetSuppliers(ctx context.Context) ([]storage.Party, error) {
	return s.parties(ctx, "storage.mysql.GetSuppliers", `SELECT id, name FROM suppliers ORDER BY name`)
}

func (s *Storage) GetSubcontractors(ctx context.Context) ([]storage.Party, error) {
	return s.parties(ctx, "storage.mysql.GetSubcontractors", `SELECT id, name FROM subcontractors ORDER BY name`)
}

func (s *Storage) parties(ctx context.Context, op, query string) ([]storage.Party, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]storage.Party, 0)
	for rows.Next() {
		var p storage.Party
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
