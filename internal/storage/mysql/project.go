package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

const projectColumns = `id, name, client, status, accepted_revision_id, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*storage.Project, error) {
	var (
		p        storage.Project
		accepted sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Client, &p.Status, &accepted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.AcceptedRevisionID = intPtr(accepted)
	return &p, nil
}

func (s *Storage) CreateProject(ctx context.Context, np storage.NewProject) (*storage.Project, error) {
	const op = "storage.mysql.CreateProject"

	res, err := s.db.ExecContext(ctx, `INSERT INTO projects (name, client, status) VALUES (?, ?, ?)`,
		np.Name, np.Client, storage.ProjectDraft)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, "project"))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	return s.GetProject(ctx, id)
}

func (s *Storage) GetProject(ctx context.Context, id int64) (*storage.Project, error) {
	const op = "storage.mysql.GetProject"

	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Storage) GetProjects(ctx context.Context) ([]storage.Project, error) {
	const op = "storage.mysql.GetProjects"

	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	projects := make([]storage.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return projects, nil
}

// SetProjectStatus only moves the project if it is still in from, so two
// requests racing on the same transition cannot both win.
// SetProjectStatus moves the project from -> to under the project row lock.
// Guards of the edge are re-checked against the revisions read FOR UPDATE, so
// a revision unlocked concurrently cannot open an offer without a locked
// revision.
func (s *Storage) SetProjectStatus(ctx context.Context, id int64, from, to storage.ProjectStatus) error {
	const op = "storage.mysql.SetProjectStatus"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	project, err := lockProject(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if project.Status != from {
		return storage.Conflict("project status changed concurrently")
	}

	revisions, err := queryRevisions(ctx, tx, `WHERE project_id = ? ORDER BY number FOR UPDATE`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.ProjectMachine.Check(from, to, workflow.ProjectContext{Revisions: revisions}); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE projects SET status = ? WHERE id = ?`, to, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return tx.Commit()
}

// staleStatus explains a conditional status update that matched nothing.
func (s *Storage) staleStatus(ctx context.Context, table, entity string, id int64) error {
	ok, err := exists(ctx, s.db, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return storage.NotFound(entity, id)
	}
	return storage.Conflict(entity + " status changed concurrently")
}

// lockProject takes the row lock that serialises all status changes,
// acceptance and revision numbering of one project.
func lockProject(ctx context.Context, tx *sql.Tx, id int64) (*storage.Project, error) {
	p, err := scanProject(tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("project", id)
	}
	return p, err
}

func (s *Storage) AcceptRevision(ctx context.Context, projectID, revisionID int64) error {
	const op = "storage.mysql.AcceptRevision"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	project, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	revisions, err := queryRevisions(ctx, tx, `WHERE project_id = ? ORDER BY number FOR UPDATE`, projectID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	pc := workflow.ProjectContext{Revisions: revisions, RevisionID: &revisionID}
	if err := workflow.ProjectMachine.Check(project.Status, storage.ProjectExecution, pc); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE revisions SET accepted = TRUE WHERE id = ?`, revisionID); err != nil {
		return fmt.Errorf("%s: accept revision: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET status = ?, accepted_revision_id = ? WHERE id = ?`,
		storage.ProjectExecution, revisionID, projectID); err != nil {
		return fmt.Errorf("%s: update project: %w", op, err)
	}

	return tx.Commit()
}

func (s *Storage) RevertAcceptance(ctx context.Context, projectID int64) error {
	const op = "storage.mysql.RevertAcceptance"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	project, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.ProjectMachine.Check(project.Status, storage.ProjectOffering, workflow.ProjectContext{}); err != nil {
		return err
	}
	if project.Status != storage.ProjectExecution {
		return storage.Conflict("project status changed concurrently")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE revisions SET accepted = FALSE WHERE project_id = ? AND accepted`, projectID); err != nil {
		return fmt.Errorf("%s: clear acceptance: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET status = ?, accepted_revision_id = NULL WHERE id = ?`,
		storage.ProjectOffering, projectID); err != nil {
		return fmt.Errorf("%s: update project: %w", op, err)
	}

	return tx.Commit()
}
