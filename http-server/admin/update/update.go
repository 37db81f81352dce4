package update

import (
	"context"
	"log/slog"
	"net/http"

	"estimate-backend/http-server/response"
)

type PriceActiveProvider interface {
	SetSupplierPriceActive(ctx context.Context, id int64, active bool) error
	SetSubcontractorRateActive(ctx context.Context, id int64, active bool) error
}

// UpdateSupplierPrice switches a quote on or off. Inactive quotes are kept
// for history and ignored by price resolution.
func UpdateSupplierPrice(log *slog.Logger, prices PriceActiveProvider) http.HandlerFunc {
	return setActive(log, "handlers.admin.UpdateSupplierPrice", prices.SetSupplierPriceActive)
}

func UpdateSubcontractorRate(log *slog.Logger, prices PriceActiveProvider) http.HandlerFunc {
	return setActive(log, "handlers.admin.UpdateSubcontractorRate", prices.SetSubcontractorRateActive)
}

func setActive(log *slog.Logger, op string, fn func(context.Context, int64, bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid id")
			return
		}

		var req struct {
			Active *bool `json:"active"`
		}
		if err := response.Decode(r, &req); err != nil || req.Active == nil {
			response.BadRequest(w, r, "active is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := fn(ctx, id, *req.Active); err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("id", id), slog.Bool("active", *req.Active)).Info("price entry updated")
		response.NoContent(w, r)
	}
}
