package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

const revisionColumns = `id, project_id, number, locked, accepted, note, created_at`

func scanRevision(row interface{ Scan(...any) error }) (*storage.Revision, error) {
	var r storage.Revision
	if err := row.Scan(&r.ID, &r.ProjectID, &r.Number, &r.Locked, &r.Accepted, &r.Note, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func queryRevisions(ctx context.Context, q queryer, where string, args ...any) ([]storage.Revision, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+revisionColumns+` FROM revisions `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revisions := make([]storage.Revision, 0)
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, *r)
	}
	return revisions, rows.Err()
}

func getRevision(ctx context.Context, q queryer, id int64, forUpdate bool) (*storage.Revision, error) {
	query := `SELECT ` + revisionColumns + ` FROM revisions WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	r, err := scanRevision(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("revision", id)
	}
	return r, err
}

func (s *Storage) GetRevision(ctx context.Context, id int64) (*storage.Revision, error) {
	const op = "storage.mysql.GetRevision"

	r, err := getRevision(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func (s *Storage) GetRevisionWithPositions(ctx context.Context, id int64) (*storage.Revision, error) {
	const op = "storage.mysql.GetRevisionWithPositions"

	r, err := getRevision(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.Positions, err = loadPositions(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func (s *Storage) GetRevisions(ctx context.Context, projectID int64) ([]storage.Revision, error) {
	const op = "storage.mysql.GetRevisions"

	revisions, err := queryRevisions(ctx, s.db, `WHERE project_id = ? ORDER BY number`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return revisions, nil
}

// insertRevision numbers the new revision after the highest existing one.
// The caller holds the project row lock.
func insertRevision(ctx context.Context, tx *sql.Tx, projectID int64, note string) (*storage.Revision, error) {
	var number int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number) + 1, 0) FROM revisions WHERE project_id = ?`, projectID).Scan(&number)
	if err != nil {
		return nil, fmt.Errorf("next number: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO revisions (project_id, number, note) VALUES (?, ?, ?)`, projectID, number, note)
	if err != nil {
		return nil, mapError(err, "revision")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return getRevision(ctx, tx, id, false)
}

func (s *Storage) CreateRevision(ctx context.Context, projectID int64, note string) (*storage.Revision, error) {
	const op = "storage.mysql.CreateRevision"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := lockProject(ctx, tx, projectID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, err := insertRevision(ctx, tx, projectID, note)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return r, nil
}

func (s *Storage) SetRevisionLocked(ctx context.Context, id int64, locked bool) error {
	const op = "storage.mysql.SetRevisionLocked"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	r, err := getRevision(ctx, tx, id, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	to := workflow.RevisionOpen
	if locked {
		to = workflow.RevisionLocked
	}
	if err := workflow.RevisionMachine.Check(workflow.RevisionStateOf(*r), to, struct{}{}); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE revisions SET locked = ? WHERE id = ?`, locked, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return tx.Commit()
}

// CopyRevision duplicates every line and component snapshot of the source
// into a new open revision of the same project.
func (s *Storage) CopyRevision(ctx context.Context, sourceID int64) (*storage.Revision, error) {
	const op = "storage.mysql.CopyRevision"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	src, err := getRevision(ctx, tx, sourceID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := lockProject(ctx, tx, src.ProjectID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	positions, err := loadPositions(ctx, tx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%s: load positions: %w", op, err)
	}

	dst, err := insertRevision(ctx, tx, src.ProjectID, fmt.Sprintf("copy of revision %d", src.Number))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range positions {
		p.RevisionID = dst.ID
		if _, err := insertPosition(ctx, tx, p); err != nil {
			return nil, fmt.Errorf("%s: copy position %d: %w", op, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return dst, nil
}

func (s *Storage) DeleteRevision(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteRevision"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	r, err := getRevision(ctx, tx, id, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckEditable(*r); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err, "revision"))
	}
	return tx.Commit()
}
