package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

// LibraryProvider reads master data. Nothing here writes.
type LibraryProvider interface {
	GetLibraryPositions(ctx context.Context, typ string) ([]storage.LibraryPosition, error)
	GetLibraryPosition(ctx context.Context, id int64) (*storage.LibraryPosition, error)
	GetSuppliers(ctx context.Context) ([]storage.Party, error)
	GetSubcontractors(ctx context.Context) ([]storage.Party, error)
}

// GetLibraryPositions lists the catalogue, optionally filtered by ?type.
func GetLibraryPositions(log *slog.Logger, library LibraryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.library.GetLibraryPositions"

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		positions, err := library.GetLibraryPositions(ctx, r.URL.Query().Get("type"))
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, positions)
	}
}

// GetLibraryPosition returns one catalogue entry with its labor and material
// norms.
func GetLibraryPosition(log *slog.Logger, library LibraryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.library.GetLibraryPosition"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid library position id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		position, err := library.GetLibraryPosition(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, position)
	}
}

func GetSuppliers(log *slog.Logger, library LibraryProvider) http.HandlerFunc {
	return parties(log, "handlers.library.GetSuppliers", library.GetSuppliers)
}

func GetSubcontractors(log *slog.Logger, library LibraryProvider) http.HandlerFunc {
	return parties(log, "handlers.library.GetSubcontractors", library.GetSubcontractors)
}

func parties(log *slog.Logger, op string, fn func(context.Context) ([]storage.Party, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		list, err := fn(ctx)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, list)
	}
}
