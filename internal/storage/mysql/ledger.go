package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"estimate-backend/internal/storage"
)

func (s *Storage) CreateLedgerEntry(ctx context.Context, e storage.LedgerEntry) (int64, error) {
	const op = "storage.mysql.CreateLedgerEntry"

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (project_id, type, amount, order_id, contract_id, paid, description, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ProjectID, e.Type, e.Amount, nullInt(e.OrderID), nullInt(e.ContractID), e.Paid, e.Description,
		e.Date.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err, "ledger entry"))
	}
	return res.LastInsertId()
}

func (s *Storage) GetLedgerEntries(ctx context.Context, projectID int64) ([]storage.LedgerEntry, error) {
	const op = "storage.mysql.GetLedgerEntries"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, type, amount, order_id, contract_id, paid, description, date
		FROM ledger_entries
		WHERE project_id = ?
		ORDER BY date, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]storage.LedgerEntry, 0)
	for rows.Next() {
		var (
			e               storage.LedgerEntry
			order, contract sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Type, &e.Amount, &order, &contract, &e.Paid, &e.Description, &e.Date); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		e.OrderID = intPtr(order)
		e.ContractID = intPtr(contract)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// SetLedgerEntryPaid is idempotent; paying a paid entry is not an error.
func (s *Storage) SetLedgerEntryPaid(ctx context.Context, id int64) error {
	const op = "storage.mysql.SetLedgerEntryPaid"

	res, err := s.db.ExecContext(ctx, `UPDATE ledger_entries SET paid = TRUE WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.NotFound("ledger entry", id)
	}
	return nil
}
