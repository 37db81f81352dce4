package ledger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"estimate-backend/internal/storage"
)

type MockLedgerProvider struct {
	mock.Mock
}

func (m *MockLedgerProvider) AddEntry(ctx context.Context, e storage.LedgerEntry) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerProvider) MarkPaid(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLedgerProvider) List(ctx context.Context, projectID int64) (*storage.LedgerReport, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.LedgerReport), args.Error(1)
}

func router(m *MockLedgerProvider) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Post("/projects/{id}/ledger", Add(log, m))
	r.Get("/projects/{id}/ledger", List(log, m))
	r.Post("/ledger/{id}/paid", MarkPaid(log, m))
	return r
}

func TestAdd(t *testing.T) {
	m := new(MockLedgerProvider)
	m.On("AddEntry", mock.Anything, mock.MatchedBy(func(e storage.LedgerEntry) bool {
		return e.ProjectID == 3 && e.Type == "Material" && e.Amount.Equal(decimal.RequireFromString("120.5")) &&
			e.OrderID != nil && *e.OrderID == 8 && e.Date.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	})).Return(int64(40), nil)

	body := `{"type":"Material","amount":"120.5","order_id":8,"date":"2026-07-01"}`
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/projects/3/ledger", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":40}`, rr.Body.String())
	m.AssertExpectations(t)
}

func TestAdd_BothLinksIs400(t *testing.T) {
	m := new(MockLedgerProvider)
	m.On("AddEntry", mock.Anything, mock.Anything).
		Return(int64(0), storage.Invalid("order_id", "an entry links an order or a contract, not both"))

	body := `{"type":"other","amount":"1","order_id":8,"contract_id":4,"date":"2026-07-01"}`
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/projects/3/ledger", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestList(t *testing.T) {
	m := new(MockLedgerProvider)
	m.On("List", mock.Anything, int64(3)).Return(&storage.LedgerReport{
		Entries: []storage.LedgerEntry{},
		Totals: []storage.LedgerTotals{
			{Type: storage.LedgerMaterial, Paid: decimal.NewFromInt(10), Unpaid: decimal.Zero},
		},
	}, nil)

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects/3/ledger", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"type":"material"`)
}

func TestMarkPaid_NotFound(t *testing.T) {
	m := new(MockLedgerProvider)
	m.On("MarkPaid", mock.Anything, int64(99)).Return(storage.NotFound("ledger entry", 99))

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ledger/99/paid", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
