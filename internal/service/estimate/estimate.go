package estimate

import (
	"context"

	"estimate-backend/internal/service/pricing"
	"estimate-backend/internal/storage"
)

type EstimateStorage interface {
	GetRevision(ctx context.Context, id int64) (*storage.Revision, error)
	GetRevisionWithPositions(ctx context.Context, id int64) (*storage.Revision, error)
	GetRevisions(ctx context.Context, projectID int64) ([]storage.Revision, error)
	CreateRevision(ctx context.Context, projectID int64, note string) (*storage.Revision, error)
	SetRevisionLocked(ctx context.Context, id int64, locked bool) error
	CopyRevision(ctx context.Context, sourceID int64) (*storage.Revision, error)
	DeleteRevision(ctx context.Context, id int64) error

	GetLibraryPosition(ctx context.Context, id int64) (*storage.LibraryPosition, error)

	GetPosition(ctx context.Context, id int64) (*storage.EstimatePosition, error)
	CreatePosition(ctx context.Context, pos storage.EstimatePosition) (int64, error)
	UpdatePosition(ctx context.Context, id int64, upd storage.PositionUpdate) error
	DeletePosition(ctx context.Context, id int64) error
	UpdateMaterialComponent(ctx context.Context, id int64, upd storage.MaterialUpdate) error
	UpdateLaborComponent(ctx context.Context, id int64, upd storage.LaborUpdate) error
}

type PriceResolver interface {
	ResolveCheapestSupplier(ctx context.Context, productID int64) (pricing.Resolution, bool, error)
	ResolveCheapestSubcontractor(ctx context.Context, libraryPositionID int64) (pricing.Resolution, bool, error)
}

// EstimateService owns revisions and their estimate lines.
type EstimateService struct {
	storage EstimateStorage
	prices  PriceResolver
}

func NewEstimateService(storage EstimateStorage, prices PriceResolver) *EstimateService {
	return &EstimateService{storage: storage, prices: prices}
}
