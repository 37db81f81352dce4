package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

const positionColumns = `id, revision_id, library_position_id, sort_order, name, unit, quantity, markup_percent, COALESCE(notes, '')`

func scanPosition(row interface{ Scan(...any) error }) (*storage.EstimatePosition, error) {
	var (
		p   storage.EstimatePosition
		lib sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.RevisionID, &lib, &p.SortOrder, &p.Name, &p.Unit, &p.Quantity, &p.MarkupPercent, &p.Notes)
	if err != nil {
		return nil, err
	}
	p.LibraryPositionID = intPtr(lib)
	p.Labor = make([]storage.LaborComponent, 0)
	p.Materials = make([]storage.MaterialComponent, 0)
	return &p, nil
}

// loadPositions reads the lines of a revision in sort order together with
// their components.
func loadPositions(ctx context.Context, q queryer, revisionID int64) ([]storage.EstimatePosition, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM estimate_positions WHERE revision_id = ? ORDER BY sort_order`, revisionID)
	if err != nil {
		return nil, err
	}
	positions := make([]storage.EstimatePosition, 0)
	index := make(map[int64]int)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[p.ID] = len(positions)
		positions = append(positions, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return positions, nil
	}

	const inRevision = `position_id IN (SELECT id FROM estimate_positions WHERE revision_id = ?) ORDER BY id`

	labor, err := queryLabor(ctx, q, inRevision, revisionID)
	if err != nil {
		return nil, err
	}
	for _, l := range labor {
		i := index[l.PositionID]
		positions[i].Labor = append(positions[i].Labor, l)
	}

	materials, err := queryMaterials(ctx, q, inRevision, revisionID)
	if err != nil {
		return nil, err
	}
	for _, m := range materials {
		i := index[m.PositionID]
		positions[i].Materials = append(positions[i].Materials, m)
	}

	return positions, nil
}

func queryLabor(ctx context.Context, q queryer, where string, args ...any) ([]storage.LaborComponent, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, position_id, description, unit, norm, rate, subcontractor_id FROM labor_components WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.LaborComponent
	for rows.Next() {
		var (
			l   storage.LaborComponent
			sub sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.PositionID, &l.Description, &l.Unit, &l.Norm, &l.Rate, &sub); err != nil {
			return nil, err
		}
		l.SubcontractorID = intPtr(sub)
		out = append(out, l)
	}
	return out, rows.Err()
}

func queryMaterials(ctx context.Context, q queryer, where string, args ...any) ([]storage.MaterialComponent, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, position_id, product_id, name, unit, norm, unit_price, supplier_id FROM material_components WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.MaterialComponent
	for rows.Next() {
		var (
			m                 storage.MaterialComponent
			product, supplier sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.PositionID, &product, &m.Name, &m.Unit, &m.Norm, &m.UnitPrice, &supplier); err != nil {
			return nil, err
		}
		m.ProductID = intPtr(product)
		m.SupplierID = intPtr(supplier)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Storage) GetPosition(ctx context.Context, id int64) (*storage.EstimatePosition, error) {
	const op = "storage.mysql.GetPosition"

	p, err := scanPosition(s.db.QueryRowContext(ctx, `SELECT `+positionColumns+` FROM estimate_positions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("position", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	labor, err := queryLabor(ctx, s.db, `position_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: labor: %w", op, err)
	}
	materials, err := queryMaterials(ctx, s.db, `position_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: materials: %w", op, err)
	}
	p.Labor = append(p.Labor, labor...)
	p.Materials = append(p.Materials, materials...)
	return p, nil
}

// insertPosition writes a line and all of its components with the sort
// order already set on p.
func insertPosition(ctx context.Context, tx *sql.Tx, p storage.EstimatePosition) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO estimate_positions
			(revision_id, library_position_id, sort_order, name, unit, quantity, markup_percent, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RevisionID, nullInt(p.LibraryPositionID), p.SortOrder, p.Name, p.Unit, p.Quantity, p.MarkupPercent, p.Notes)
	if err != nil {
		return 0, mapError(err, "position")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(p.Labor) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO labor_components (position_id, description, unit, norm, rate, subcontractor_id)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("prepare labor: %w", err)
		}
		defer stmt.Close()

		for _, l := range p.Labor {
			if _, err := stmt.ExecContext(ctx, id, l.Description, l.Unit, l.Norm, l.Rate, nullInt(l.SubcontractorID)); err != nil {
				return 0, mapError(err, "labor component")
			}
		}
	}

	if len(p.Materials) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO material_components (position_id, product_id, name, unit, norm, unit_price, supplier_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("prepare materials: %w", err)
		}
		defer stmt.Close()

		for _, m := range p.Materials {
			if _, err := stmt.ExecContext(ctx, id, nullInt(m.ProductID), m.Name, m.Unit, m.Norm, m.UnitPrice, nullInt(m.SupplierID)); err != nil {
				return 0, mapError(err, "material component")
			}
		}
	}

	return id, nil
}

// lockEditableRevision locks the revision row and fails unless it is open.
func lockEditableRevision(ctx context.Context, tx *sql.Tx, revisionID int64) error {
	r, err := getRevision(ctx, tx, revisionID, true)
	if err != nil {
		return err
	}
	return workflow.CheckEditable(*r)
}

// CreatePosition appends the line at the end of an open revision. The lock
// check, the sort order and all inserts share one transaction.
func (s *Storage) CreatePosition(ctx context.Context, p storage.EstimatePosition) (int64, error) {
	const op = "storage.mysql.CreatePosition"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := lockEditableRevision(ctx, tx, p.RevisionID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM estimate_positions WHERE revision_id = ?`,
		p.RevisionID).Scan(&p.SortOrder)
	if err != nil {
		return 0, fmt.Errorf("%s: next sort order: %w", op, err)
	}

	id, err := insertPosition(ctx, tx, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}
	return id, nil
}

// lockPositionRevision locks the revision that owns the line and checks that
// it is open.
func lockPositionRevision(ctx context.Context, tx *sql.Tx, positionID int64) error {
	var revisionID int64
	err := tx.QueryRowContext(ctx, `SELECT revision_id FROM estimate_positions WHERE id = ?`, positionID).Scan(&revisionID)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotFound("position", positionID)
	}
	if err != nil {
		return err
	}
	return lockEditableRevision(ctx, tx, revisionID)
}

type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) empty() bool { return len(s.cols) == 0 }

func (s *setList) clause() string { return strings.Join(s.cols, ", ") }

func (s *Storage) UpdatePosition(ctx context.Context, id int64, upd storage.PositionUpdate) error {
	const op = "storage.mysql.UpdatePosition"

	var set setList
	if upd.Name != nil {
		set.add("name", *upd.Name)
	}
	if upd.Unit != nil {
		set.add("unit", *upd.Unit)
	}
	if upd.Quantity != nil {
		set.add("quantity", *upd.Quantity)
	}
	if upd.MarkupPercent != nil {
		set.add("markup_percent", *upd.MarkupPercent)
	}
	if upd.Notes != nil {
		set.add("notes", *upd.Notes)
	}
	if set.empty() {
		return nil
	}

	return s.updateInOpenRevision(ctx, op, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE estimate_positions SET `+set.clause()+` WHERE id = ?`, append(set.args, id)...)
		return err
	})
}

func (s *Storage) DeletePosition(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeletePosition"

	return s.updateInOpenRevision(ctx, op, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM estimate_positions WHERE id = ?`, id)
		return err
	})
}

func (s *Storage) UpdateMaterialComponent(ctx context.Context, id int64, upd storage.MaterialUpdate) error {
	const op = "storage.mysql.UpdateMaterialComponent"

	var set setList
	if upd.SupplierID != nil {
		set.add("supplier_id", *upd.SupplierID)
	}
	if upd.UnitPrice != nil {
		set.add("unit_price", *upd.UnitPrice)
	}
	if upd.Norm != nil {
		set.add("norm", *upd.Norm)
	}
	if set.empty() {
		return nil
	}

	positionID, err := s.componentPosition(ctx, "material_components", "material component", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.updateInOpenRevision(ctx, op, positionID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE material_components SET `+set.clause()+` WHERE id = ?`, append(set.args, id)...)
		return mapError(err, "material component")
	})
}

func (s *Storage) UpdateLaborComponent(ctx context.Context, id int64, upd storage.LaborUpdate) error {
	const op = "storage.mysql.UpdateLaborComponent"

	var set setList
	if upd.SubcontractorID != nil {
		set.add("subcontractor_id", *upd.SubcontractorID)
	}
	if upd.Rate != nil {
		set.add("rate", *upd.Rate)
	}
	if upd.Norm != nil {
		set.add("norm", *upd.Norm)
	}
	if set.empty() {
		return nil
	}

	positionID, err := s.componentPosition(ctx, "labor_components", "labor component", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.updateInOpenRevision(ctx, op, positionID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE labor_components SET `+set.clause()+` WHERE id = ?`, append(set.args, id)...)
		return mapError(err, "labor component")
	})
}

func (s *Storage) componentPosition(ctx context.Context, table, entity string, id int64) (int64, error) {
	var positionID int64
	err := s.db.QueryRowContext(ctx, `SELECT position_id FROM `+table+` WHERE id = ?`, id).Scan(&positionID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.NotFound(entity, id)
	}
	return positionID, err
}

// updateInOpenRevision runs fn in a transaction that holds the lock of the
// revision owning positionID, after checking the revision is open.
func (s *Storage) updateInOpenRevision(ctx context.Context, op string, positionID int64, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := lockPositionRevision(ctx, tx, positionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return tx.Commit()
}
