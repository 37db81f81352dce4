package procurement

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"estimate-backend/internal/storage"
)

type MockDraftGenerator struct {
	mock.Mock
}

func (m *MockDraftGenerator) GenerateOrders(ctx context.Context, projectID int64) (*storage.GenerationResult, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.GenerationResult), args.Error(1)
}

func (m *MockDraftGenerator) GenerateContracts(ctx context.Context, projectID int64) (*storage.GenerationResult, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.GenerationResult), args.Error(1)
}

func router(m *MockDraftGenerator) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Post("/projects/{id}/orders/generate", GenerateOrders(log, m))
	r.Post("/projects/{id}/contracts/generate", GenerateContracts(log, m))
	return r
}

func TestGenerateOrders(t *testing.T) {
	m := new(MockDraftGenerator)
	m.On("GenerateOrders", mock.Anything, int64(3)).Return(&storage.GenerationResult{
		BatchID: "b-1",
		Orders:  []storage.PurchaseOrder{{ID: 1, Number: "PO-2026-0001"}},
		Skipped: 2,
	}, nil)

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/projects/3/orders/generate", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"batch_id":"b-1"`)
	assert.Contains(t, rr.Body.String(), `"skipped":2`)
}

func TestGenerateContracts_NoAcceptedRevision(t *testing.T) {
	m := new(MockDraftGenerator)
	m.On("GenerateContracts", mock.Anything, int64(3)).
		Return(nil, storage.Invalid("accepted_revision_id", "no accepted revision"))

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/projects/3/contracts/generate", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
