package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type PriceListProvider interface {
	GetSupplierPrices(ctx context.Context, productID int64) ([]storage.PriceEntry, error)
	GetSubcontractorRates(ctx context.Context, libraryPositionID int64) ([]storage.PriceEntry, error)
}

// GetSupplierPrices lists every quote for ?product_id, inactive ones included.
func GetSupplierPrices(log *slog.Logger, prices PriceListProvider) http.HandlerFunc {
	return list(log, "handlers.admin.GetSupplierPrices", "product_id", prices.GetSupplierPrices)
}

func GetSubcontractorRates(log *slog.Logger, prices PriceListProvider) http.HandlerFunc {
	return list(log, "handlers.admin.GetSubcontractorRates", "library_position_id", prices.GetSubcontractorRates)
}

func list(log *slog.Logger, op, param string, fn func(context.Context, int64) ([]storage.PriceEntry, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get(param), 10, 64)
		if err != nil || id <= 0 {
			log.With(slog.String("op", op)).Warn("missing " + param + " in query parameters")
			response.BadRequest(w, r, "missing required query parameter '"+param+"'")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		entries, err := fn(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, entries)
	}
}
