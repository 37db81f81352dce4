package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"estimate-backend/internal/storage"
)

const (
	orderPrefix    = "PO"
	contractPrefix = "CT"
)

// nextNumber hands out the next document number of a kind within a year.
// The upsert keeps the sequence row locked until the transaction ends.
func nextNumber(ctx context.Context, tx *sql.Tx, kind string, year int) (string, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO document_sequences (kind, year, last) VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE last = last + 1`, kind, year)
	if err != nil {
		return "", err
	}

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT last FROM document_sequences WHERE kind = ? AND year = ?`, kind, year).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", kind, year, seq), nil
}

// lockAcceptedRevision fails unless revisionID is still the accepted
// revision of the project, and holds the project lock for the caller.
func lockAcceptedRevision(ctx context.Context, tx *sql.Tx, projectID, revisionID int64) error {
	project, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return err
	}
	if project.AcceptedRevisionID == nil || *project.AcceptedRevisionID != revisionID {
		return storage.Conflict("accepted revision changed")
	}
	return nil
}

// CreateOrders stores one generation run of purchase orders.
func (s *Storage) CreateOrders(ctx context.Context, projectID, revisionID int64, orders []storage.PurchaseOrder) ([]storage.PurchaseOrder, error) {
	const op = "storage.mysql.CreateOrders"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := lockAcceptedRevision(ctx, tx, projectID, revisionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_lines (order_id, product_id, name, unit, quantity, unit_price, delivered_qty)
		VALUES (?, ?, ?, ?, ?, ?, 0)`)
	if err != nil {
		return nil, fmt.Errorf("%s: prepare statement: %w", op, err)
	}
	defer lineStmt.Close()

	now := time.Now().UTC()
	out := make([]storage.PurchaseOrder, len(orders))
	for i, o := range orders {
		o.ProjectID = projectID
		o.RevisionID = revisionID
		o.Status = storage.OrderDraft
		o.CreatedAt = now

		o.Number, err = nextNumber(ctx, tx, orderPrefix, now.Year())
		if err != nil {
			return nil, fmt.Errorf("%s: number: %w", op, err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_orders (project_id, revision_id, supplier_id, number, batch_id, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ProjectID, o.RevisionID, o.SupplierID, o.Number, o.BatchID, o.Status, o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: insert order: %w", op, mapError(err, "purchase order"))
		}
		if o.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		lines := make([]storage.OrderLine, len(o.Lines))
		for j, l := range o.Lines {
			l.OrderID = o.ID
			res, err := lineStmt.ExecContext(ctx, l.OrderID, nullInt(l.ProductID), l.Name, l.Unit, l.Quantity, l.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("%s: insert line: %w", op, mapError(err, "order line"))
			}
			if l.ID, err = res.LastInsertId(); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			lines[j] = l
		}
		o.Lines = lines
		out[i] = o
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return out, nil
}

// CreateContracts stores one generation run of subcontractor contracts.
func (s *Storage) CreateContracts(ctx context.Context, projectID, revisionID int64, contracts []storage.Contract) ([]storage.Contract, error) {
	const op = "storage.mysql.CreateContracts"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := lockAcceptedRevision(ctx, tx, projectID, revisionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contract_lines (contract_id, description, unit, quantity, rate, executed_qty)
		VALUES (?, ?, ?, ?, ?, 0)`)
	if err != nil {
		return nil, fmt.Errorf("%s: prepare statement: %w", op, err)
	}
	defer lineStmt.Close()

	now := time.Now().UTC()
	out := make([]storage.Contract, len(contracts))
	for i, c := range contracts {
		c.ProjectID = projectID
		c.RevisionID = revisionID
		c.Status = storage.ContractDraft
		c.CreatedAt = now

		c.Number, err = nextNumber(ctx, tx, contractPrefix, now.Year())
		if err != nil {
			return nil, fmt.Errorf("%s: number: %w", op, err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO contracts (project_id, revision_id, subcontractor_id, number, batch_id, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ProjectID, c.RevisionID, c.SubcontractorID, c.Number, c.BatchID, c.Status, c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: insert contract: %w", op, mapError(err, "contract"))
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		lines := make([]storage.ContractLine, len(c.Lines))
		for j, l := range c.Lines {
			l.ContractID = c.ID
			res, err := lineStmt.ExecContext(ctx, l.ContractID, l.Description, l.Unit, l.Quantity, l.Rate)
			if err != nil {
				return nil, fmt.Errorf("%s: insert line: %w", op, mapError(err, "contract line"))
			}
			if l.ID, err = res.LastInsertId(); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			l.Value = l.Quantity.Mul(l.Rate)
			lines[j] = l
		}
		c.Lines = lines
		out[i] = c
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return out, nil
}
