package revision

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/service/rollup"
	"estimate-backend/internal/storage"
)

type RevisionProvider interface {
	CreateRevision(ctx context.Context, projectID int64, note string) (*storage.Revision, error)
	GetRevision(ctx context.Context, id int64) (*storage.Revision, error)
	ListRevisions(ctx context.Context, projectID int64) ([]storage.Revision, error)
	LockRevision(ctx context.Context, id int64) (*storage.Revision, error)
	UnlockRevision(ctx context.Context, id int64) (*storage.Revision, error)
	CopyRevision(ctx context.Context, sourceID int64) (*storage.Revision, error)
	DeleteRevision(ctx context.Context, id int64) error
	RevisionSummary(ctx context.Context, id int64) (rollup.RevisionCost, error)
}

func Create(log *slog.Logger, revisions RevisionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.revision.Create"

		projectID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		var req struct {
			Note string `json:"note"`
		}
		if r.ContentLength != 0 {
			if err := response.Decode(r, &req); err != nil {
				response.BadRequest(w, r, "invalid JSON body")
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		rev, err := revisions.CreateRevision(ctx, projectID, req.Note)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("revision_id", rev.ID), slog.Int("number", rev.Number)).
			Info("revision created")
		response.Created(w, r, rev)
	}
}

func List(log *slog.Logger, revisions RevisionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.revision.List"

		projectID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		list, err := revisions.ListRevisions(ctx, projectID)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, list)
	}
}

type revisionResponse struct {
	*storage.Revision
	Summary rollup.RevisionCost `json:"summary"`
}

// Get returns the revision with its positions and rolled-up costs.
func Get(log *slog.Logger, revisions RevisionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.revision.Get"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid revision id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		rev, err := revisions.GetRevision(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		summary, err := revisions.RevisionSummary(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, revisionResponse{Revision: rev, Summary: summary})
	}
}

func Lock(log *slog.Logger, revisions RevisionProvider) http.HandlerFunc {
	return setLocked(log, "handlers.revision.Lock", revisions.LockRevision)
}

func Unlock(log *slog.Logger, revisions RevisionProvider) http.HandlerFunc {
	return setLocked(log, "handlers.revision.Unlock", revisions.UnlockRevision)
}

func setLocked(log *slog.Logger, op string, fn func(context.Context, int64) (*storage.Revision, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid revision id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		rev, err := fn(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("revision_id", id), slog.Bool("locked", rev.Locked)).
			Info("revision lock changed")
		render.JSON(w, r, rev)
	}
}

func Copy(log *slog.Logger, revisions RevisionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.revision.Copy"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid revision id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		rev, err := revisions.CopyRevision(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("source_id", id), slog.Int64("revision_id", rev.ID)).
			Info("revision copied")
		response.Created(w, r, rev)
	}
}

func Delete(log *slog.Logger, revisions RevisionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.revision.Delete"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid revision id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := revisions.DeleteRevision(ctx, id); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}
