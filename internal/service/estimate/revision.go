package estimate

import (
	"context"
	"fmt"

	"estimate-backend/internal/service/rollup"
	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

func (s *EstimateService) CreateRevision(ctx context.Context, projectID int64, note string) (*storage.Revision, error) {
	const op = "service.estimate.CreateRevision"

	if projectID <= 0 {
		return nil, storage.Invalid("project_id", "is required")
	}

	rev, err := s.storage.CreateRevision(ctx, projectID, note)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rev, nil
}

func (s *EstimateService) GetRevision(ctx context.Context, id int64) (*storage.Revision, error) {
	rev, err := s.storage.GetRevisionWithPositions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.estimate.GetRevision: %w", err)
	}
	return rev, nil
}

func (s *EstimateService) ListRevisions(ctx context.Context, projectID int64) ([]storage.Revision, error) {
	revs, err := s.storage.GetRevisions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("service.estimate.ListRevisions: %w", err)
	}
	return revs, nil
}

func (s *EstimateService) LockRevision(ctx context.Context, id int64) (*storage.Revision, error) {
	return s.setLocked(ctx, id, workflow.RevisionLocked)
}

func (s *EstimateService) UnlockRevision(ctx context.Context, id int64) (*storage.Revision, error) {
	return s.setLocked(ctx, id, workflow.RevisionOpen)
}

func (s *EstimateService) setLocked(ctx context.Context, id int64, to workflow.RevisionState) (*storage.Revision, error) {
	const op = "service.estimate.setLocked"

	rev, err := s.storage.GetRevision(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := workflow.RevisionMachine.Check(workflow.RevisionStateOf(*rev), to, struct{}{}); err != nil {
		return nil, err
	}

	locked := to == workflow.RevisionLocked
	if err := s.storage.SetRevisionLocked(ctx, id, locked); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rev.Locked = locked
	return rev, nil
}

// CopyRevision branches a new open revision off any revision of the project.
// Components are duplicated as they are, prices are not re-resolved.
func (s *EstimateService) CopyRevision(ctx context.Context, sourceID int64) (*storage.Revision, error) {
	const op = "service.estimate.CopyRevision"

	if _, err := s.storage.GetRevision(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rev, err := s.storage.CopyRevision(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rev, nil
}

func (s *EstimateService) DeleteRevision(ctx context.Context, id int64) error {
	const op = "service.estimate.DeleteRevision"

	rev, err := s.storage.GetRevision(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckEditable(*rev); err != nil {
		return err
	}

	if err := s.storage.DeleteRevision(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *EstimateService) RevisionSummary(ctx context.Context, id int64) (rollup.RevisionCost, error) {
	rev, err := s.storage.GetRevisionWithPositions(ctx, id)
	if err != nil {
		return rollup.RevisionCost{}, fmt.Errorf("service.estimate.RevisionSummary: %w", err)
	}
	return rollup.Revision(*rev), nil
}
