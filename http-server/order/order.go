package order

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"estimate-backend/http-server/response"
	"estimate-backend/internal/storage"
)

type OrderProvider interface {
	GetOrder(ctx context.Context, id int64) (*storage.PurchaseOrder, error)
	ListOrders(ctx context.Context, projectID int64) ([]storage.PurchaseOrder, error)
	RecordDelivery(ctx context.Context, d storage.NewDelivery) (*storage.PurchaseOrder, error)
	TransitionOrder(ctx context.Context, id int64, to storage.OrderStatus) (*storage.PurchaseOrder, error)
	UpdateOrderLine(ctx context.Context, orderID, lineID int64, upd storage.LineUpdate) error
	DeleteOrder(ctx context.Context, id int64) error
}

func List(log *slog.Logger, orders OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.order.List"

		projectID, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid project id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		list, err := orders.ListOrders(ctx, projectID)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, list)
	}
}

func Get(log *slog.Logger, orders OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.order.Get"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		o, err := orders.GetOrder(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, o)
	}
}

func Transition(log *slog.Logger, orders OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.order.Transition"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid order id")
			return
		}

		var req struct {
			Status storage.OrderStatus `json:"status"`
		}
		if err := response.Decode(r, &req); err != nil || req.Status == "" {
			response.BadRequest(w, r, "status is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		o, err := orders.TransitionOrder(ctx, id, req.Status)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("order_id", id), slog.String("status", string(o.Status))).
			Info("order status changed")
		render.JSON(w, r, o)
	}
}

type deliveryRequest struct {
	Date  response.Date          `json:"date"`
	Note  string                 `json:"note"`
	Items []storage.DeliveryItem `json:"items"`
}

func Deliver(log *slog.Logger, orders OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.order.Deliver"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid order id")
			return
		}

		var req deliveryRequest
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, r, "invalid JSON body, date must be YYYY-MM-DD")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		o, err := orders.RecordDelivery(ctx, storage.NewDelivery{
			OrderID: id,
			Date:    req.Date.Time,
			Note:    req.Note,
			Items:   req.Items,
		})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.With(slog.String("op", op), slog.Int64("order_id", id), slog.Int("percent", o.Percent)).
			Info("delivery recorded")
		response.Created(w, r, o)
	}
}

func UpdateLine(log *slog.Logger, orders OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.order.UpdateLine"

		id, ok1 := response.ID(r, "id")
		lineID, ok2 := response.ID(r, "lineID")
		if !ok1 || !ok2 {
			response.BadRequest(w, r, "invalid order or line id")
			return
		}

		var upd storage.LineUpdate
		if err := response.Decode(r, &upd); err != nil {
			response.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := orders.UpdateOrderLine(ctx, id, lineID, upd); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}

func Delete(log *slog.Logger, orders OrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.order.Delete"

		id, ok := response.ID(r, "id")
		if !ok {
			response.BadRequest(w, r, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.Timeout)
		defer cancel()

		if err := orders.DeleteOrder(ctx, id); err != nil {
			response.Error(w, r, log, op, err)
			return
		}
		response.NoContent(w, r)
	}
}
