package procurement

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estimate-backend/internal/service/estimate"
	"estimate-backend/internal/service/pricing"
	"estimate-backend/internal/storage"
)

type MockProcurementStorage struct {
	mock.Mock
}

func (m *MockProcurementStorage) GetProject(ctx context.Context, id int64) (*storage.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockProcurementStorage) GetRevisionWithPositions(ctx context.Context, id int64) (*storage.Revision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Revision), args.Error(1)
}

func (m *MockProcurementStorage) CreateOrders(ctx context.Context, projectID, revisionID int64, orders []storage.PurchaseOrder) ([]storage.PurchaseOrder, error) {
	args := m.Called(ctx, projectID, revisionID, orders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.PurchaseOrder), args.Error(1)
}

func (m *MockProcurementStorage) CreateContracts(ctx context.Context, projectID, revisionID int64, contracts []storage.Contract) ([]storage.Contract, error) {
	args := m.Called(ctx, projectID, revisionID, contracts)
	if fn, ok := args.Get(0).(func(context.Context, int64, int64, []storage.Contract) []storage.Contract); ok {
		return fn(ctx, projectID, revisionID, contracts), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Contract), args.Error(1)
}

// priceList is an in-memory price list for the end-to-end test.
type priceList struct {
	supplier []storage.PriceEntry
	rates    []storage.PriceEntry
}

func (p *priceList) GetSupplierPrices(_ context.Context, productID int64) ([]storage.PriceEntry, error) {
	var out []storage.PriceEntry
	for _, e := range p.supplier {
		if e.SubjectID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *priceList) GetSubcontractorRates(_ context.Context, libraryPositionID int64) ([]storage.PriceEntry, error) {
	var out []storage.PriceEntry
	for _, e := range p.rates {
		if e.SubjectID == libraryPositionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *priceList) CreateSupplierPrice(context.Context, storage.NewSupplierPrice) (int64, error) {
	return 0, nil
}

func (p *priceList) CreateSubcontractorRate(context.Context, storage.NewSubcontractorRate) (int64, error) {
	return 0, nil
}

func (p *priceList) SetSupplierPriceActive(context.Context, int64, bool) error { return nil }

func (p *priceList) SetSubcontractorRateActive(context.Context, int64, bool) error { return nil }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v int64) *int64 { return &v }

func TestPlanOrders_GroupsBySupplierAndProduct(t *testing.T) {
	rev := storage.Revision{
		ID:        4,
		ProjectID: 1,
		Positions: []storage.EstimatePosition{
			{SortOrder: 2, Quantity: d("2"), Materials: []storage.MaterialComponent{
				{ProductID: ptr(100), Name: "Brick", Unit: "pcs", Norm: d("5"), UnitPrice: d("8"), SupplierID: ptr(7)},
			}},
			{SortOrder: 1, Quantity: d("3"), Materials: []storage.MaterialComponent{
				{ProductID: ptr(100), Name: "Brick", Unit: "pcs", Norm: d("2"), UnitPrice: d("7"), SupplierID: ptr(7)},
				{ProductID: ptr(200), Name: "Mortar", Unit: "kg", Norm: d("1"), UnitPrice: d("1"), SupplierID: ptr(8)},
				{Name: "Ties", Unit: "pcs", Norm: d("4"), UnitPrice: d("0.1")},
			}},
		},
	}

	orders, skipped := PlanOrders(rev)

	assert.Equal(t, 1, skipped)
	require.Len(t, orders, 2)

	assert.Equal(t, int64(7), orders[0].SupplierID)
	assert.Equal(t, storage.OrderDraft, orders[0].Status)
	assert.Equal(t, int64(4), orders[0].RevisionID)
	require.Len(t, orders[0].Lines, 1)
	// 2*3 from position 1 plus 5*2 from position 2
	assert.Equal(t, "16", orders[0].Lines[0].Quantity.String())
	// price of the first component in position order
	assert.Equal(t, "7", orders[0].Lines[0].UnitPrice.String())

	assert.Equal(t, int64(8), orders[1].SupplierID)
	assert.Equal(t, "3", orders[1].Lines[0].Quantity.String())
}

func TestPlanOrders_ProductlessGroupedByNameAndUnit(t *testing.T) {
	rev := storage.Revision{Positions: []storage.EstimatePosition{
		{SortOrder: 1, Quantity: d("1"), Materials: []storage.MaterialComponent{
			{Name: "Sand", Unit: "t", Norm: d("1"), SupplierID: ptr(3)},
			{Name: "Sand", Unit: "m3", Norm: d("1"), SupplierID: ptr(3)},
			{Name: "Sand", Unit: "t", Norm: d("2"), SupplierID: ptr(3)},
		}},
	}}

	orders, skipped := PlanOrders(rev)

	assert.Zero(t, skipped)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Lines, 2)
	assert.Equal(t, "3", orders[0].Lines[0].Quantity.String())
	assert.Equal(t, "1", orders[0].Lines[1].Quantity.String())
}

func TestPlanContracts(t *testing.T) {
	rev := storage.Revision{Positions: []storage.EstimatePosition{
		{SortOrder: 1, Quantity: d("10"), Labor: []storage.LaborComponent{
			{Description: "Bricklaying", Unit: "h", Norm: d("1.5"), Rate: d("40"), SubcontractorID: ptr(30)},
			{Description: "Cleanup", Unit: "h", Norm: d("0.1"), Rate: d("20")},
		}},
		{SortOrder: 2, Quantity: d("2"), Labor: []storage.LaborComponent{
			{Description: "Bricklaying", Unit: "h", Norm: d("1"), Rate: d("45"), SubcontractorID: ptr(30)},
		}},
	}}

	contracts, skipped := PlanContracts(rev)

	assert.Equal(t, 1, skipped)
	require.Len(t, contracts, 1)
	require.Len(t, contracts[0].Lines, 1)
	line := contracts[0].Lines[0]
	assert.Equal(t, "17", line.Quantity.String())
	assert.Equal(t, "40", line.Rate.String())
	assert.Equal(t, "680", line.Value.String())
}

func TestGenerateOrders_NoAcceptedRevision(t *testing.T) {
	st := new(MockProcurementStorage)
	svc := NewProcurementService(st)

	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Status: storage.ProjectOffering}, nil)

	_, err := svc.GenerateOrders(context.Background(), 1)

	assert.ErrorIs(t, err, storage.ErrValidation)
	assert.ErrorContains(t, err, "no accepted revision")
	st.AssertNotCalled(t, "CreateOrders", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateContracts_AdditiveWithFreshBatch(t *testing.T) {
	st := new(MockProcurementStorage)
	svc := NewProcurementService(st)
	batches := []string{"batch-1", "batch-2"}
	svc.newID = func() string {
		id := batches[0]
		batches = batches[1:]
		return id
	}

	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, AcceptedRevisionID: ptr(4)}, nil)
	st.On("GetRevisionWithPositions", mock.Anything, int64(4)).Return(&storage.Revision{ID: 4, ProjectID: 1, Positions: []storage.EstimatePosition{
		{SortOrder: 1, Quantity: d("1"), Labor: []storage.LaborComponent{
			{Description: "Painting", Unit: "m2", Norm: d("1"), Rate: d("12"), SubcontractorID: ptr(30)},
		}},
	}}, nil)
	st.On("CreateContracts", mock.Anything, int64(1), int64(4), mock.Anything).
		Return(func(_ context.Context, _, _ int64, cs []storage.Contract) []storage.Contract { return cs }, nil)

	first, err := svc.GenerateContracts(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.GenerateContracts(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "batch-1", first.BatchID)
	assert.Equal(t, "batch-2", second.BatchID)
	assert.Equal(t, "batch-2", second.Contracts[0].BatchID)
	st.AssertNumberOfCalls(t, "CreateContracts", 2)
}

// Library position with one material (norm 2), cheapest supplier quote 7.00,
// position quantity set to 3: the generated order has one line of 6 @ 7.00.
func TestEndToEnd_InstantiatePlanOrder(t *testing.T) {
	prices := pricing.NewPriceService(&priceList{supplier: []storage.PriceEntry{
		{ID: 1, PartyID: 50, SubjectID: 100, Price: d("10"), Active: true},
		{ID: 2, PartyID: 60, SubjectID: 100, Price: d("7"), Active: true},
		{ID: 3, PartyID: 70, SubjectID: 100, Price: d("7"), Active: true},
	}})

	lib := &storage.LibraryPosition{
		ID: 11, Name: "Wall", Unit: "m2",
		Materials: []storage.LibraryMaterialComponent{
			{ProductID: ptr(100), Name: "Brick", Unit: "pcs", Norm: d("2"), DefaultPrice: d("9")},
		},
	}

	pos, err := estimate.NewEstimateService(nil, prices).Instantiate(context.Background(), 4, lib)
	require.NoError(t, err)
	pos.SortOrder = 1
	pos.Quantity = d("3")

	orders, skipped := PlanOrders(storage.Revision{ID: 4, ProjectID: 1, Positions: []storage.EstimatePosition{pos}})

	assert.Zero(t, skipped)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(60), orders[0].SupplierID)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, "6", orders[0].Lines[0].Quantity.String())
	assert.Equal(t, "7.00", orders[0].Lines[0].UnitPrice.StringFixed(2))
}
