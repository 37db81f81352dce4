package generate_excel

import (
	"context"
	"errors"
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

type MockGenerateExcel struct {
	mock.Mock
}

func (m *MockGenerateExcel) ExportRevision(ctx context.Context, revisionID int64) ([]byte, string, error) {
	args := m.Called(ctx, revisionID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func serve(m *MockGenerateExcel, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/revisions/{id}/export", GenerateRevisionExcel(slog.New(slog.NewTextHandler(io.Discard, nil)), m))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestGenerateRevisionExcel_Success(t *testing.T) {
	m := new(MockGenerateExcel)
	m.On("ExportRevision", mock.Anything, int64(3)).Return([]byte("PK\x03\x04"), "Estimate_P-1_rev0.xlsx", nil)

	rr := serve(m, "/revisions/3/export")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Estimate_P-1_rev0.xlsx"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04", rr.Body.String())
	m.AssertExpectations(t)
}

func TestGenerateRevisionExcel_NotFound(t *testing.T) {
	m := new(MockGenerateExcel)
	m.On("ExportRevision", mock.Anything, int64(9)).Return(nil, "", storage.NotFound("revision", 9))

	rr := serve(m, "/revisions/9/export")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Disposition"))
}

func TestGenerateRevisionExcel_InternalErrorHidden(t *testing.T) {
	m := new(MockGenerateExcel)
	m.On("ExportRevision", mock.Anything, int64(4)).Return(nil, "", errors.New("excelize: broken style"))

	rr := serve(m, "/revisions/4/export")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "excelize")
}

func TestGenerateRevisionExcel_BadID(t *testing.T) {
	m := new(MockGenerateExcel)

	rr := serve(m, "/revisions/abc/export")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertNotCalled(t, "ExportRevision", mock.Anything, mock.Anything)
}
