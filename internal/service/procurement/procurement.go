package procurement

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"estimate-backend/internal/storage"
)

type ProcurementStorage interface {
	GetProject(ctx context.Context, id int64) (*storage.Project, error)
	GetRevisionWithPositions(ctx context.Context, id int64) (*storage.Revision, error)

	// CreateOrders inserts the drafts and their lines in one transaction and
	// assigns the document numbers. It fails if the project no longer has
	// revisionID accepted.
	CreateOrders(ctx context.Context, projectID, revisionID int64, orders []storage.PurchaseOrder) ([]storage.PurchaseOrder, error)
	CreateContracts(ctx context.Context, projectID, revisionID int64, contracts []storage.Contract) ([]storage.Contract, error)
}

type ProcurementService struct {
	storage ProcurementStorage
	newID   func() string
}

func NewProcurementService(storage ProcurementStorage) *ProcurementService {
	return &ProcurementService{storage: storage, newID: uuid.NewString}
}

// GenerateOrders creates draft purchase orders for the accepted revision of
// the project. Every run is additive and carries its own batch id.
func (s *ProcurementService) GenerateOrders(ctx context.Context, projectID int64) (*storage.GenerationResult, error) {
	const op = "service.procurement.GenerateOrders"

	rev, err := s.acceptedRevision(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, skipped := PlanOrders(*rev)
	res := &storage.GenerationResult{BatchID: s.newID(), Skipped: skipped}
	if len(orders) == 0 {
		return res, nil
	}

	for i := range orders {
		orders[i].BatchID = res.BatchID
	}

	res.Orders, err = s.storage.CreateOrders(ctx, projectID, rev.ID, orders)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *ProcurementService) GenerateContracts(ctx context.Context, projectID int64) (*storage.GenerationResult, error) {
	const op = "service.procurement.GenerateContracts"

	rev, err := s.acceptedRevision(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contracts, skipped := PlanContracts(*rev)
	res := &storage.GenerationResult{BatchID: s.newID(), Skipped: skipped}
	if len(contracts) == 0 {
		return res, nil
	}

	for i := range contracts {
		contracts[i].BatchID = res.BatchID
	}

	res.Contracts, err = s.storage.CreateContracts(ctx, projectID, rev.ID, contracts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *ProcurementService) acceptedRevision(ctx context.Context, projectID int64) (*storage.Revision, error) {
	project, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.AcceptedRevisionID == nil {
		return nil, storage.Invalid("accepted_revision_id", "no accepted revision")
	}
	return s.storage.GetRevisionWithPositions(ctx, *project.AcceptedRevisionID)
}
