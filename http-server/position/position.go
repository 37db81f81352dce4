package position

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type PositionProvider interface {
	AddFromLibrary(ctx context.Context, revisionID, libraryPositionID int64) (int64, error)
	AddManualPosition(ctx context.Context, revisionID int64, name, unit string, quantity decimal.Decimal) (int64, error)
	UpdatePosition(ctx context.Context, id int64, upd storage.PositionUpdate) error
	DeletePosition(ctx context.Context, id int64) error
	UpdateMaterialComponent(ctx context.Context, positionID, componentID int64, upd storage.MaterialUpdate) error
	UpdateLaborComponent(ctx context.Context, positionID, componentID int64, upd storage.LaborUpdate) error
}

type addRequest struct {
	LibraryPositionID int64           `json:"library_position_id"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// Add copies a library position into the revision, or adds a manual line when
// no library_position_id is given.
func Add(log *slog.Logger, positions PositionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.position.Add"

		revisionID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid revision id")
			return
		}

		var req addRequest
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		var (
			id  int64
			err error
		)
		if req.LibraryPositionID > 0 {
			id, err = positions.AddFromLibrary(ctx, revisionID, req.LibraryPositionID)
		} else {
			id, err = positions.AddManualPosition(ctx, revisionID, req.Name, req.Unit, req.Quantity)
		}
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(
			slog.String("op", op),
			slog.Int64("revision_id", revisionID),
			slog.Int64("position_id", id),
		).Info("position added")
		response.Created(w, r, map[string]int64{"id": id})
	}
}

func Update(log *slog.Logger, positions PositionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.position.Update"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid position id")
			return
		}

		var upd storage.PositionUpdate
		if err := response.Decode(r, &upd); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := positions.UpdatePosition(ctx, id, upd); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}

func Delete(log *slog.Logger, positions PositionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.position.Delete"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid position id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := positions.DeletePosition(ctx, id); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}

func UpdateMaterial(log *slog.Logger, positions PositionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.position.UpdateMaterial"

		positionID, ok1 := response.ID(r, "id")
		componentID, ok2 := response.ID(r, "componentID")
		if !ok1 || !ok2 {
			response.BadRequest(w, r, "invalid position or component id")
			return
		}

		var upd storage.MaterialUpdate
		if err := response.Decode(r, &upd); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := positions.UpdateMaterialComponent(ctx, positionID, componentID, upd); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}

func UpdateLabor(log *slog.Logger, positions PositionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.position.UpdateLabor"

		positionID, ok1 := response.ID(r, "id")
		componentID, ok2 := response.ID(r, "componentID")
		if !ok1 || !ok2 {
			response.BadRequest(w, r, "invalid position or component id")
			return
		}

		var upd storage.LaborUpdate
		if err := response.Decode(r, &upd); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := positions.UpdateLaborComponent(ctx, positionID, componentID, upd); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}
