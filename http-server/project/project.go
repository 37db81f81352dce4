package project

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type ProjectProvider interface {
	CreateProject(ctx context.Context, p storage.NewProject) (*storage.Project, error)
	GetProject(ctx context.Context, id int64) (*storage.Project, error)
	ListProjects(ctx context.Context) ([]storage.Project, error)
	Transition(ctx context.Context, projectID int64, to storage.ProjectStatus, revisionID *int64) (*storage.Project, error)
	AcceptRevision(ctx context.Context, revisionID int64) (*storage.Project, error)
	Progress(ctx context.Context, projectID int64) (*storage.ProjectProgress, error)
}

func Create(log *slog.Logger, projects ProjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.project.Create"

		var req storage.NewProject
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		project, err := projects.CreateProject(ctx, req)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("project_id", project.ID)).Info("project created")
		response.Created(w, r, project)
	}
}

func List(log *slog.Logger, projects ProjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.project.List"

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		list, err := projects.ListProjects(ctx)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, list)
	}
}

func Get(log *slog.Logger, projects ProjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.project.Get"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		project, err := projects.GetProject(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, project)
	}
}

type transitionRequest struct {
	Status     storage.ProjectStatus `json:"status"`
	RevisionID *int64                `json:"revision_id"`
}

// Transition moves a project to another status. Moving to execution needs
// revision_id of the revision to accept.
func Transition(log *slog.Logger, projects ProjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.project.Transition"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		var req transitionRequest
		if err := response.Decode(r, &req); err != nil || req.Status == "" {
			response.BadRequest(w, r, "status is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		project, err := projects.Transition(ctx, id, req.Status, req.RevisionID)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(
			slog.String("op", op),
			slog.Int64("project_id", id),
			slog.String("status", string(project.Status)),
		).Info("project status changed")
		render.JSON(w, r, project)
	}
}

func AcceptRevision(log *slog.Logger, projects ProjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.project.AcceptRevision"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid revision id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		project, err := projects.AcceptRevision(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("revision_id", id)).Info("revision accepted")
		render.JSON(w, r, project)
	}
}

func Progress(log *slog.Logger, projects ProjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.project.Progress"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		progress, err := projects.Progress(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, progress)
	}
}
