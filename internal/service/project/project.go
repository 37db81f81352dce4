package project

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

type ProjectStorage interface {
	CreateProject(ctx context.Context, p storage.NewProject) (*storage.Project, error)
	GetProject(ctx context.Context, id int64) (*storage.Project, error)
	GetProjects(ctx context.Context) ([]storage.Project, error)
	GetRevision(ctx context.Context, id int64) (*storage.Revision, error)
	GetRevisions(ctx context.Context, projectID int64) ([]storage.Revision, error)

	// SetProjectStatus moves the project only if it is still in from and the
	// guard of the edge holds under the project row lock.
	SetProjectStatus(ctx context.Context, id int64, from, to storage.ProjectStatus) error
	// AcceptRevision marks the revision accepted, records it on the project
	// and moves the project offering -> execution in one transaction.
	AcceptRevision(ctx context.Context, projectID, revisionID int64) error
	// RevertAcceptance clears the accepted revision and moves the project
	// execution -> offering in one transaction.
	RevertAcceptance(ctx context.Context, projectID int64) error

	GetOrders(ctx context.Context, projectID int64) ([]storage.PurchaseOrder, error)
	GetContracts(ctx context.Context, projectID int64) ([]storage.Contract, error)
}

type ProjectService struct {
	storage ProjectStorage
}

func NewProjectService(storage ProjectStorage) *ProjectService {
	return &ProjectService{storage: storage}
}

func (s *ProjectService) CreateProject(ctx context.Context, p storage.NewProject) (*storage.Project, error) {
	const op = "service.project.CreateProject"

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, storage.Invalid("name", "is required")
	}

	project, err := s.storage.CreateProject(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id int64) (*storage.Project, error) {
	project, err := s.storage.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.project.GetProject: %w", err)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]storage.Project, error) {
	projects, err := s.storage.GetProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.project.ListProjects: %w", err)
	}
	return projects, nil
}

// Transition moves the project to the requested status. revisionID is only
// used when moving to execution, where it names the revision to accept.
func (s *ProjectService) Transition(ctx context.Context, projectID int64, to storage.ProjectStatus, revisionID *int64) (*storage.Project, error) {
	const op = "service.project.Transition"

	project, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	revisions, err := s.storage.GetRevisions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pc := workflow.ProjectContext{Revisions: revisions, RevisionID: revisionID}
	if err := workflow.ProjectMachine.Check(project.Status, to, pc); err != nil {
		return nil, err
	}

	switch {
	case to == storage.ProjectExecution:
		err = s.storage.AcceptRevision(ctx, projectID, *revisionID)
	case project.Status == storage.ProjectExecution && to == storage.ProjectOffering:
		err = s.storage.RevertAcceptance(ctx, projectID)
	default:
		err = s.storage.SetProjectStatus(ctx, projectID, project.Status, to)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	project, err = s.storage.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return project, nil
}

// AcceptRevision accepts a locked revision of a project in offering. It is
// the same operation as moving that project to execution.
func (s *ProjectService) AcceptRevision(ctx context.Context, revisionID int64) (*storage.Project, error) {
	rev, err := s.storage.GetRevision(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("service.project.AcceptRevision: %w", err)
	}
	return s.Transition(ctx, rev.ProjectID, storage.ProjectExecution, &revisionID)
}

// Progress rolls order deliveries and contract execution up to the project.
func (s *ProjectService) Progress(ctx context.Context, projectID int64) (*storage.ProjectProgress, error) {
	const op = "service.project.Progress"

	project, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		orders    []storage.PurchaseOrder
		contracts []storage.Contract
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.storage.GetOrders(gCtx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		contracts, err = s.storage.GetContracts(gCtx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	progress := &storage.ProjectProgress{
		ProjectID: project.ID,
		Status:    project.Status,
		Orders:    make([]storage.DocumentProgress, 0, len(orders)),
		Contracts: make([]storage.DocumentProgress, 0, len(contracts)),
	}

	orderPercents := make([]int, 0, len(orders))
	for i := range orders {
		p := workflow.DecorateOrder(&orders[i])
		orderPercents = append(orderPercents, p)
		progress.Orders = append(progress.Orders, storage.DocumentProgress{
			ID:      orders[i].ID,
			Number:  orders[i].Number,
			Status:  string(orders[i].Status),
			Percent: p,
		})
	}

	contractPercents := make([]int, 0, len(contracts))
	for i := range contracts {
		p := workflow.DecorateContract(&contracts[i])
		contractPercents = append(contractPercents, p)
		progress.Contracts = append(progress.Contracts, storage.DocumentProgress{
			ID:      contracts[i].ID,
			Number:  contracts[i].Number,
			Status:  string(contracts[i].Status),
			Percent: p,
		})
	}

	progress.OrdersPercent = workflow.MeanPercent(orderPercents)
	progress.ContractsPercent = workflow.MeanPercent(contractPercents)

	return progress, nil
}
