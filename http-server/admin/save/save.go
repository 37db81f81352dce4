package save

import (
	"context"
	"log/slog"
	"net/http"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type PriceCreateProvider interface {
	AddSupplierPrice(ctx context.Context, p storage.NewSupplierPrice) (int64, error)
	AddSubcontractorRate(ctx context.Context, r storage.NewSubcontractorRate) (int64, error)
}

func SaveSupplierPrice(log *slog.Logger, prices PriceCreateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveSupplierPrice"

		var req storage.NewSupplierPrice
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		id, err := prices.AddSupplierPrice(ctx, req)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(
			slog.String("op", op),
			slog.Int64("supplier_id", req.SupplierID),
			slog.Int64("product_id", req.ProductID),
		).Info("supplier price added")
		response.Created(w, r, map[string]int64{"id": id})
	}
}

func SaveSubcontractorRate(log *slog.Logger, prices PriceCreateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveSubcontractorRate"

		var req storage.NewSubcontractorRate
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		id, err := prices.AddSubcontractorRate(ctx, req)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(
			slog.String("op", op),
			slog.Int64("subcontractor_id", req.SubcontractorID),
			slog.Int64("library_position_id", req.LibraryPositionID),
		).Info("subcontractor rate added")
		response.Created(w, r, map[string]int64{"id": id})
	}
}
