package generate_excel

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"estimate-backend/internal/storage"
)

type MockGenerateExcelStorage struct {
	mock.Mock
}

func (m *MockGenerateExcelStorage) GetProject(ctx context.Context, id int64) (*storage.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockGenerateExcelStorage) GetRevisionWithPositions(ctx context.Context, id int64) (*storage.Revision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Revision), args.Error(1)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExportRevision(t *testing.T) {
	st := new(MockGenerateExcelStorage)
	g := NewGenerateService(st)

	st.On("GetRevisionWithPositions", mock.Anything, int64(4)).Return(&storage.Revision{
		ID: 4, ProjectID: 1, Number: 2,
		Positions: []storage.EstimatePosition{{
			ID: 1, Name: "Brick wall", Unit: "m2", Quantity: d("3"), MarkupPercent: d("0"),
			Materials: []storage.MaterialComponent{{Name: "Brick", Unit: "pcs", Norm: d("2"), UnitPrice: d("7")}},
		}},
	}, nil)
	st.On("GetProject", mock.Anything, int64(1)).Return(&storage.Project{ID: 1, Name: "School", Client: "City"}, nil)

	data, name, err := g.ExportRevision(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "estimate_1_rev2.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Estimate", "A1")
	require.NoError(t, err)
	assert.Equal(t, "School, revision 2", title)

	pos, err := f.GetCellValue("Estimate", "B5")
	require.NoError(t, err)
	assert.Equal(t, "Brick wall", pos)

	total, err := f.GetCellValue("Estimate", "I5")
	require.NoError(t, err)
	assert.Equal(t, "42", total)

	component, err := f.GetCellValue("Estimate", "B6")
	require.NoError(t, err)
	assert.Equal(t, "Brick", component)
}

func TestExportRevision_NotFound(t *testing.T) {
	st := new(MockGenerateExcelStorage)
	g := NewGenerateService(st)

	st.On("GetRevisionWithPositions", mock.Anything, int64(4)).Return(nil, storage.NotFound("revision", 4))

	_, _, err := g.ExportRevision(context.Background(), 4)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
