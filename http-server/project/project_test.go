package project

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type MockProjectProvider struct {
	mock.Mock
}

func (m *MockProjectProvider) CreateProject(ctx context.Context, p storage.NewProject) (*storage.Project, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockProjectProvider) GetProject(ctx context.Context, id int64) (*storage.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockProjectProvider) ListProjects(ctx context.Context) ([]storage.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Project), args.Error(1)
}

func (m *MockProjectProvider) Transition(ctx context.Context, projectID int64, to storage.ProjectStatus, revisionID *int64) (*storage.Project, error) {
	args := m.Called(ctx, projectID, to, revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockProjectProvider) AcceptRevision(ctx context.Context, revisionID int64) (*storage.Project, error) {
	args := m.Called(ctx, revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Project), args.Error(1)
}

func (m *MockProjectProvider) Progress(ctx context.Context, projectID int64) (*storage.ProjectProgress, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProjectProgress), args.Error(1)
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func router(m *MockProjectProvider) http.Handler {
	r := chi.NewRouter()
	r.Post("/projects", Create(quietLog(), m))
	r.Get("/projects/{id}", Get(quietLog(), m))
	r.Post("/projects/{id}/status", Transition(quietLog(), m))
	r.Post("/revisions/{id}/accept", AcceptRevision(quietLog(), m))
	return r
}

func TestCreate_Success(t *testing.T) {
	m := new(MockProjectProvider)
	m.On("CreateProject", mock.Anything, storage.NewProject{Name: "Warehouse", Client: "ACME"}).
		Return(&storage.Project{ID: 5, Name: "Warehouse", Status: storage.ProjectDraft}, nil)

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"name":"Warehouse","client":"ACME"}`))
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var got storage.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(5), got.ID)
	m.AssertExpectations(t)
}

func TestCreate_ValidationIs400(t *testing.T) {
	m := new(MockProjectProvider)
	m.On("CreateProject", mock.Anything, mock.Anything).Return(nil, storage.Invalid("name", "is required"))

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"name":"  "}`))
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "name: is required")
}

func TestCreate_BadJSON(t *testing.T) {
	m := new(MockProjectProvider)

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{`))
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestGet_NotFound(t *testing.T) {
	m := new(MockProjectProvider)
	m.On("GetProject", mock.Anything, int64(9)).Return(nil, storage.NotFound("project", 9))

	req := httptest.NewRequest(http.MethodGet, "/projects/9", nil)
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGet_InvalidID(t *testing.T) {
	m := new(MockProjectProvider)

	req := httptest.NewRequest(http.MethodGet, "/projects/abc", nil)
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTransition_InvalidIs409WithStates(t *testing.T) {
	m := new(MockProjectProvider)
	m.On("Transition", mock.Anything, int64(3), storage.ProjectClosed, (*int64)(nil)).
		Return(nil, storage.InvalidTransition("project", "draft", "closed", ""))

	req := httptest.NewRequest(http.MethodPost, "/projects/3/status", strings.NewReader(`{"status":"closed"}`))
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	var got response.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "draft", got.From)
	assert.Equal(t, "closed", got.To)
}

func TestAcceptRevision(t *testing.T) {
	m := new(MockProjectProvider)
	rev := int64(12)
	m.On("AcceptRevision", mock.Anything, int64(12)).
		Return(&storage.Project{ID: 3, Status: storage.ProjectExecution, AcceptedRevisionID: &rev}, nil)

	req := httptest.NewRequest(http.MethodPost, "/revisions/12/accept", nil)
	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"accepted_revision_id":12`)
}
