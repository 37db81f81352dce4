package estimate

import (
	"context"

	"github.com/stretchr/testify/mock"

	"estimate-backend/internal/service/pricing"
	"estimate-backend/internal/storage"
)

type MockEstimateStorage struct {
	mock.Mock
}

func (m *MockEstimateStorage) GetRevision(ctx context.Context, id int64) (*storage.Revision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Revision), args.Error(1)
}

func (m *MockEstimateStorage) GetRevisionWithPositions(ctx context.Context, id int64) (*storage.Revision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Revision), args.Error(1)
}

func (m *MockEstimateStorage) GetRevisions(ctx context.Context, projectID int64) ([]storage.Revision, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Revision), args.Error(1)
}

func (m *MockEstimateStorage) CreateRevision(ctx context.Context, projectID int64, note string) (*storage.Revision, error) {
	args := m.Called(ctx, projectID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Revision), args.Error(1)
}

func (m *MockEstimateStorage) SetRevisionLocked(ctx context.Context, id int64, locked bool) error {
	return m.Called(ctx, id, locked).Error(0)
}

func (m *MockEstimateStorage) CopyRevision(ctx context.Context, sourceID int64) (*storage.Revision, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Revision), args.Error(1)
}

func (m *MockEstimateStorage) DeleteRevision(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEstimateStorage) GetLibraryPosition(ctx context.Context, id int64) (*storage.LibraryPosition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.LibraryPosition), args.Error(1)
}

func (m *MockEstimateStorage) GetPosition(ctx context.Context, id int64) (*storage.EstimatePosition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.EstimatePosition), args.Error(1)
}

func (m *MockEstimateStorage) CreatePosition(ctx context.Context, pos storage.EstimatePosition) (int64, error) {
	args := m.Called(ctx, pos)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEstimateStorage) UpdatePosition(ctx context.Context, id int64, upd storage.PositionUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

func (m *MockEstimateStorage) DeletePosition(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEstimateStorage) UpdateMaterialComponent(ctx context.Context, id int64, upd storage.MaterialUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

func (m *MockEstimateStorage) UpdateLaborComponent(ctx context.Context, id int64, upd storage.LaborUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

type MockPriceResolver struct {
	mock.Mock
}

func (m *MockPriceResolver) ResolveCheapestSupplier(ctx context.Context, productID int64) (pricing.Resolution, bool, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(pricing.Resolution), args.Bool(1), args.Error(2)
}

func (m *MockPriceResolver) ResolveCheapestSubcontractor(ctx context.Context, libraryPositionID int64) (pricing.Resolution, bool, error) {
	args := m.Called(ctx, libraryPositionID)
	return args.Get(0).(pricing.Resolution), args.Bool(1), args.Error(2)
}
