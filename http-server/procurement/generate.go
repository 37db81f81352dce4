package procurement

import (
	"context"
	"log/slog"
	"net/http"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type DraftGenerator interface {
	GenerateOrders(ctx context.Context, projectID int64) (*storage.GenerationResult, error)
	GenerateContracts(ctx context.Context, projectID int64) (*storage.GenerationResult, error)
}

func GenerateOrders(log *slog.Logger, gen DraftGenerator) http.HandlerFunc {
	return generate(log, "handlers.procurement.GenerateOrders", gen.GenerateOrders)
}

func GenerateContracts(log *slog.Logger, gen DraftGenerator) http.HandlerFunc {
	return generate(log, "handlers.procurement.GenerateContracts", gen.GenerateContracts)
}

func generate(log *slog.Logger, op string, fn func(context.Context, int64) (*storage.GenerationResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		res, err := fn(ctx, projectID)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(
			slog.String("op", op),
			slog.Int64("project_id", projectID),
			slog.String("batch_id", res.BatchID),
			slog.Int("orders", len(res.Orders)),
			slog.Int("contracts", len(res.Contracts)),
			slog.Int("skipped", res.Skipped),
		).Info("drafts generated")
		response.Created(w, r, res)
	}
}
