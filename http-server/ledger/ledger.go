package ledger

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type LedgerProvider interface {
	AddEntry(ctx context.Context, e storage.LedgerEntry) (int64, error)
	MarkPaid(ctx context.Context, id int64) error
	List(ctx context.Context, projectID int64) (*storage.LedgerReport, error)
}

type entryRequest struct {
	Type        storage.LedgerType `json:"type"`
	Amount      decimal.Decimal    `json:"amount"`
	OrderID     *int64             `json:"order_id"`
	ContractID  *int64             `json:"contract_id"`
	Description string             `json:"description"`
	Date        response.Date      `json:"date"`
}

func Add(log *slog.Logger, ledger LedgerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ledger.Add"

		projectID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		var req entryRequest
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, r, "invalid JSON body, date must be YYYY-MM-DD")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		id, err := ledger.AddEntry(ctx, storage.LedgerEntry{
			ProjectID:   projectID,
			Type:        req.Type,
			Amount:      req.Amount,
			OrderID:     req.OrderID,
			ContractID:  req.ContractID,
			Description: req.Description,
			Date:        req.Date.Time,
		})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("project_id", projectID), slog.Int64("entry_id", id)).
			Info("ledger entry added")
		response.Created(w, r, map[string]int64{"id": id})
	}
}

func List(log *slog.Logger, ledger LedgerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ledger.List"

		projectID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		report, err := ledger.List(ctx, projectID)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, report)
	}
}

func MarkPaid(log *slog.Logger, ledger LedgerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ledger.MarkPaid"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid ledger entry id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := ledger.MarkPaid(ctx, id); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}
