package contract

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type ContractProvider interface {
	GetContract(ctx context.Context, id int64) (*storage.Contract, error)
	ListContracts(ctx context.Context, projectID int64) ([]storage.Contract, error)
	RecordExecution(ctx context.Context, e storage.NewExecution) (*storage.Contract, error)
	TransitionContract(ctx context.Context, id int64, to storage.ContractStatus) (*storage.Contract, error)
	UpdateContractLine(ctx context.Context, contractID, lineID int64, upd storage.LineUpdate) error
	DeleteContract(ctx context.Context, id int64) error
}

func List(log *slog.Logger, contracts ContractProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.contract.List"

		projectID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		list, err := contracts.ListContracts(ctx, projectID)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, list)
	}
}

func Get(log *slog.Logger, contracts ContractProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.contract.Get"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid contract id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		c, err := contracts.GetContract(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, c)
	}
}

func Transition(log *slog.Logger, contracts ContractProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.contract.Transition"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid contract id")
			return
		}

		var req struct {
			Status storage.ContractStatus `json:"status"`
		}
		if err := response.Decode(r, &req); err != nil || req.Status == "" {
			response.BadRequest(w, r, "status is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		c, err := contracts.TransitionContract(ctx, id, req.Status)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("contract_id", id), slog.String("status", string(c.Status))).
			Info("contract status changed")
		render.JSON(w, r, c)
	}
}

type executionRequest struct {
	Date     response.Date   `json:"date"`
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note"`
}

// Execute books executed work against one contract line.
func Execute(log *slog.Logger, contracts ContractProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.contract.Execute"

		lineID, ok := response.ID(r, "lineID")
		if !ok {
			response.BadRequest(w, r, "invalid contract line id")
			return
		}

		var req executionRequest
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, r, "invalid JSON body, date must be YYYY-MM-DD")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		c, err := contracts.RecordExecution(ctx, storage.NewExecution{
			ContractLineID: lineID,
			Date:           req.Date.Time,
			Quantity:       req.Quantity,
			Note:           req.Note,
		})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("contract_id", c.ID), slog.Int("percent", c.Percent)).
			Info("execution recorded")
		response.Created(w, r, c)
	}
}

func UpdateLine(log *slog.Logger, contracts ContractProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.contract.UpdateLine"

		id, ok1 := response.ID(r, "id")
		lineID, ok2 := response.ID(r, "lineID")
		if !ok1 || !ok2 {
			response.BadRequest(w, r, "invalid contract or line id")
			return
		}

		var upd storage.LineUpdate
		if err := response.Decode(r, &upd); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := contracts.UpdateContractLine(ctx, id, lineID, upd); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}

func Delete(log *slog.Logger, contracts ContractProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.contract.Delete"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid contract id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := contracts.DeleteContract(ctx, id); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}
