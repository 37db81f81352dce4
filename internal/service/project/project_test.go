package project

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estimate-backend/internal/storage"
)

type MockProjectStorage struct {
	mock.Mock
}

func (m *MockProjectStorage) CreateProject(ctx context.Context, p storage.NewProject) (*storage.Project, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockProjectStorage) GetProject(ctx context.Context, id int64) (*storage.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockProjectStorage) GetProjects(ctx context.Context) ([]storage.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Project), args.Error(1)
}

func (m *MockProjectStorage) GetRevision(ctx context.Context, id int64) (*storage.Revision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Revision), args.Error(1)
}

func (m *MockProjectStorage) GetRevisions(ctx context.Context, projectID int64) ([]storage.Revision, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Revision), args.Error(1)
}

func (m *MockProjectStorage) SetProjectStatus(ctx context.Context, id int64, from, to storage.ProjectStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockProjectStorage) AcceptRevision(ctx context.Context, projectID, revisionID int64) error {
	return m.Called(ctx, projectID, revisionID).Error(0)
}

func (m *MockProjectStorage) RevertAcceptance(ctx context.Context, projectID int64) error {
	return m.Called(ctx, projectID).Error(0)
}

func (m *MockProjectStorage) GetOrders(ctx context.Context, projectID int64) ([]storage.PurchaseOrder, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.PurchaseOrder), args.Error(1)
}

func (m *MockProjectStorage) GetContracts(ctx context.Context, projectID int64) ([]storage.Contract, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Contract), args.Error(1)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v int64) *int64 { return &v }

func TestCreateProject_RequiresName(t *testing.T) {
	svc := NewProjectService(new(MockProjectStorage))

	_, err := svc.CreateProject(context.Background(), storage.NewProject{Name: "  "})
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestTransition_DraftToOfferingNeedsLockedRevision(t *testing.T) {
	st := new(MockProjectStorage)
	svc := NewProjectService(st)

	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectDraft}, nil)
	st.On("GetRevisions", mock.Anything, int64(1)).Return([]storage.Revision{{ID: 10, ProjectID: 1}}, nil)

	_, err := svc.Transition(context.Background(), 1, storage.ProjectOffering, nil)

	var te *storage.InvalidTransitionError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "no locked revision")
	st.AssertNotCalled(t, "SetProjectStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_DraftToOffering(t *testing.T) {
	st := new(MockProjectStorage)
	svc := NewProjectService(st)

	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectDraft}, nil).Once()
	st.On("GetRevisions", mock.Anything, int64(1)).Return([]storage.Revision{{ID: 10, ProjectID: 1, Locked: true}}, nil)
	st.On("SetProjectStatus", mock.Anything, int64(1), storage.ProjectDraft, storage.ProjectOffering).Return(nil)
	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectOffering}, nil).Once()

	p, err := svc.Transition(context.Background(), 1, storage.ProjectOffering, nil)

	require.NoError(t, err)
	assert.Equal(t, storage.ProjectOffering, p.Status)
	st.AssertExpectations(t)
}

func TestTransition_InvalidNamesBothStatuses(t *testing.T) {
	st := new(MockProjectStorage)
	svc := NewProjectService(st)

	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectClosed}, nil)
	st.On("GetRevisions", mock.Anything, int64(1)).Return([]storage.Revision{}, nil)

	_, err := svc.Transition(context.Background(), 1, storage.ProjectExecution, ptr(10))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
	assert.Contains(t, err.Error(), "execution")
}

func TestAcceptRevision(t *testing.T) {
	st := new(MockProjectStorage)
	svc := NewProjectService(st)

	st.On("GetRevision", mock.Anything, int64(10)).Return(&storage.Revision{ID: 10, ProjectID: 1, Locked: true}, nil)
	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectOffering}, nil).Once()
	st.On("GetRevisions", mock.Anything, int64(1)).Return([]storage.Revision{{ID: 10, ProjectID: 1, Locked: true}}, nil)
	st.On("AcceptRevision", mock.Anything, int64(1), int64(10)).Return(nil)
	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectExecution, AcceptedRevisionID: ptr(10)}, nil).Once()

	p, err := svc.AcceptRevision(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, storage.ProjectExecution, p.Status)
	require.NotNil(t, p.AcceptedRevisionID)
	assert.Equal(t, int64(10), *p.AcceptedRevisionID)
}

func TestAcceptRevision_OpenRevisionRejected(t *testing.T) {
	st := new(MockProjectStorage)
	svc := NewProjectService(st)

	st.On("GetRevision", mock.Anything, int64(10)).Return(&storage.Revision{ID: 10, ProjectID: 1}, nil)
	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectOffering}, nil)
	st.On("GetRevisions", mock.Anything, int64(1)).Return([]storage.Revision{{ID: 10, ProjectID: 1}}, nil)

	_, err := svc.AcceptRevision(context.Background(), 10)

	assert.ErrorContains(t, err, "not locked")
	st.AssertNotCalled(t, "AcceptRevision", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_ExecutionToOfferingRevertsAcceptance(t *testing.T) {
	st := new(MockProjectStorage)
	svc := NewProjectService(st)

	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectExecution, AcceptedRevisionID: ptr(10)}, nil).Once()
	st.On("GetRevisions", mock.Anything, int64(1)).Return([]storage.Revision{{ID: 10, ProjectID: 1, Locked: true, Accepted: true}}, nil)
	st.On("RevertAcceptance", mock.Anything, int64(1)).Return(nil)
	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectOffering}, nil).Once()

	p, err := svc.Transition(context.Background(), 1, storage.ProjectOffering, nil)

	require.NoError(t, err)
	assert.Nil(t, p.AcceptedRevisionID)
	st.AssertNotCalled(t, "SetProjectStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProgress(t *testing.T) {
	st := new(MockProjectStorage)
	svc := NewProjectService(st)

	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectExecution}, nil)
	st.On("GetOrders", mock.Anything, int64(1)).Return([]storage.PurchaseOrder{
		{ID: 1, Number: "PO-2026-0001", Status: storage.OrderPartiallyDelivered, Lines: []storage.OrderLine{
			{Quantity: d("6"), DeliveredQty: d("6")},
			{Quantity: d("4"), DeliveredQty: d("0")},
		}},
	}, nil)
	st.On("GetContracts", mock.Anything, int64(1)).Return([]storage.Contract{
		{ID: 2, Number: "CT-2026-0001", Status: storage.ContractSigned, Lines: []storage.ContractLine{
			{Quantity: d("3"), ExecutedQty: d("1")},
		}},
		{ID: 3, Number: "CT-2026-0002", Status: storage.ContractCompleted, Lines: []storage.ContractLine{
			{Quantity: d("2"), ExecutedQty: d("2")},
		}},
	}, nil)

	p, err := svc.Progress(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, p.Orders, 1)
	assert.Equal(t, 50, p.Orders[0].Percent)
	assert.Equal(t, 50, p.OrdersPercent)
	require.Len(t, p.Contracts, 2)
	assert.Equal(t, 33, p.Contracts[0].Percent)
	assert.Equal(t, 100, p.Contracts[1].Percent)
	// mean of 33 and 100
	assert.Equal(t, 67, p.ContractsPercent)
}
