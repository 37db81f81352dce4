package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

const contractColumns = `id, project_id, revision_id, subcontractor_id, number, batch_id, status, created_at`

func scanContract(row interface{ Scan(...any) error }) (*storage.Contract, error) {
	var c storage.Contract
	err := row.Scan(&c.ID, &c.ProjectID, &c.RevisionID, &c.SubcontractorID, &c.Number, &c.BatchID, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Lines = make([]storage.ContractLine, 0)
	return &c, nil
}

func getContract(ctx context.Context, q queryer, id int64, forUpdate bool) (*storage.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanContract(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("contract", id)
	}
	return c, err
}

func queryContractLines(ctx context.Context, q queryer, where string, args ...any) ([]storage.ContractLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, contract_id, description, unit, quantity, rate, executed_qty
		FROM contract_lines WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.ContractLine, 0)
	for rows.Next() {
		var l storage.ContractLine
		if err := rows.Scan(&l.ID, &l.ContractID, &l.Description, &l.Unit, &l.Quantity, &l.Rate, &l.ExecutedQty); err != nil {
			return nil, err
		}
		l.Value = l.Quantity.Mul(l.Rate)
		l.CompletionPercent = workflow.Percent(l.ExecutedQty, l.Quantity)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Storage) GetContract(ctx context.Context, id int64) (*storage.Contract, error) {
	const op = "storage.mysql.GetContract"

	c, err := getContract(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.Lines, err = queryContractLines(ctx, s.db, `contract_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: lines: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.contract_line_id, e.date, e.quantity, e.note
		FROM execution_entries e
		JOIN contract_lines cl ON cl.id = e.contract_line_id
		WHERE cl.contract_id = ?
		ORDER BY e.date, e.id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: entries: %w", op, err)
	}
	defer rows.Close()

	index := make(map[int64]int, len(c.Lines))
	for i, l := range c.Lines {
		index[l.ID] = i
	}
	for rows.Next() {
		var e storage.ExecutionEntry
		if err := rows.Scan(&e.ID, &e.ContractLineID, &e.Date, &e.Quantity, &e.Note); err != nil {
			return nil, fmt.Errorf("%s: scan entry: %w", op, err)
		}
		i := index[e.ContractLineID]
		c.Lines[i].Entries = append(c.Lines[i].Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Storage) GetContracts(ctx context.Context, projectID int64) ([]storage.Contract, error) {
	const op = "storage.mysql.GetContracts"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	contracts := make([]storage.Contract, 0)
	index := make(map[int64]int)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		index[c.ID] = len(contracts)
		contracts = append(contracts, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines, err := queryContractLines(ctx, s.db,
		`contract_id IN (SELECT id FROM contracts WHERE project_id = ?) ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: lines: %w", op, err)
	}
	for _, l := range lines {
		i := index[l.ContractID]
		contracts[i].Lines = append(contracts[i].Lines, l)
	}
	return contracts, nil
}

func (s *Storage) GetContractLine(ctx context.Context, id int64) (*storage.ContractLine, error) {
	const op = "storage.mysql.GetContractLine"

	lines, err := queryContractLines(ctx, s.db, `id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(lines) == 0 {
		return nil, storage.NotFound("contract line", id)
	}
	return &lines[0], nil
}

// CreateExecution books executed work on one line. The contract row is
// locked first, then the line, so it serialises with other executions and
// status changes of the same contract.
func (s *Storage) CreateExecution(ctx context.Context, ne storage.NewExecution) (*storage.ExecutionEntry, error) {
	const op = "storage.mysql.CreateExecution"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var contractID int64
	err = tx.QueryRowContext(ctx, `SELECT contract_id FROM contract_lines WHERE id = ?`, ne.ContractLineID).Scan(&contractID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("contract line", ne.ContractLineID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contract, err := getContract(ctx, tx, contractID, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckExecutable(contract.Status); err != nil {
		return nil, err
	}

	lines, err := queryContractLines(ctx, tx, `contract_id = ? ORDER BY id FOR UPDATE`, contractID)
	if err != nil {
		return nil, fmt.Errorf("%s: lines: %w", op, err)
	}

	var line *storage.ContractLine
	for i := range lines {
		if lines[i].ID == ne.ContractLineID {
			line = &lines[i]
		}
	}
	if line == nil {
		return nil, storage.NotFound("contract line", ne.ContractLineID)
	}
	if err := workflow.CheckQuantity(line.ID, ne.Quantity, line.Quantity, line.ExecutedQty); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO execution_entries (contract_line_id, date, quantity, note) VALUES (?, ?, ?, ?)`,
		ne.ContractLineID, ne.Date.Format("2006-01-02"), ne.Quantity, ne.Note)
	if err != nil {
		return nil, fmt.Errorf("%s: insert entry: %w", op, err)
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE contract_lines SET executed_qty = executed_qty + ? WHERE id = ?`,
		ne.Quantity, ne.ContractLineID); err != nil {
		return nil, fmt.Errorf("%s: update line: %w", op, mapError(err, "contract line"))
	}
	line.ExecutedQty = line.ExecutedQty.Add(ne.Quantity)

	if status := workflow.ContractStatusAfterExecution(contract.Status, lines); status != contract.Status {
		if _, err := tx.ExecContext(ctx,
			`UPDATE contracts SET status = ? WHERE id = ?`, status, contractID); err != nil {
			return nil, fmt.Errorf("%s: update status: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return &storage.ExecutionEntry{
		ID:             entryID,
		ContractLineID: ne.ContractLineID,
		Date:           ne.Date,
		Quantity:       ne.Quantity,
		Note:           ne.Note,
	}, nil
}

func (s *Storage) SetContractStatus(ctx context.Context, id int64, from, to storage.ContractStatus) error {
	const op = "storage.mysql.SetContractStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE contracts SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return s.staleStatus(ctx, "contracts", "contract", id)
	}
	return nil
}

func (s *Storage) UpdateContractLine(ctx context.Context, contractID, lineID int64, upd storage.LineUpdate) error {
	const op = "storage.mysql.UpdateContractLine"

	var set setList
	if upd.Quantity != nil {
		set.add("quantity", *upd.Quantity)
	}
	if upd.Price != nil {
		set.add("rate", *upd.Price)
	}
	if set.empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	contract, err := getContract(ctx, tx, contractID, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckContractDraft(contract.Status, "edit"); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE contract_lines SET `+set.clause()+` WHERE id = ? AND contract_id = ?`, append(set.args, lineID, contractID)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err, "contract line"))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	} else if n == 0 {
		return storage.NotFound("contract line", lineID)
	}
	return tx.Commit()
}

func (s *Storage) DeleteContract(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteContract"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	contract, err := getContract(ctx, tx, id, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckContractDraft(contract.Status, "delete"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err, "contract"))
	}
	return tx.Commit()
}
