package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

const orderColumns = `id, project_id, revision_id, supplier_id, number, batch_id, status, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*storage.PurchaseOrder, error) {
	var o storage.PurchaseOrder
	err := row.Scan(&o.ID, &o.ProjectID, &o.RevisionID, &o.SupplierID, &o.Number, &o.BatchID, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Lines = make([]storage.OrderLine, 0)
	return &o, nil
}

func getOrder(ctx context.Context, q queryer, id int64, forUpdate bool) (*storage.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound("purchase order", id)
	}
	return o, err
}

func queryOrderLines(ctx context.Context, q queryer, where string, args ...any) ([]storage.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, unit, quantity, unit_price, delivered_qty
		FROM order_lines WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.OrderLine, 0)
	for rows.Next() {
		var (
			l       storage.OrderLine
			product sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &product, &l.Name, &l.Unit, &l.Quantity, &l.UnitPrice, &l.DeliveredQty); err != nil {
			return nil, err
		}
		l.ProductID = intPtr(product)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*storage.PurchaseOrder, error) {
	const op = "storage.mysql.GetOrder"

	o, err := getOrder(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	o.Lines, err = queryOrderLines(ctx, s.db, `order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: lines: %w", op, err)
	}

	o.Deliveries, err = s.deliveries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: deliveries: %w", op, err)
	}
	return o, nil
}

func (s *Storage) deliveries(ctx context.Context, orderID int64) ([]storage.Delivery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.date, d.note, dl.id, dl.order_line_id, dl.quantity
		FROM deliveries d
		JOIN delivery_lines dl ON dl.delivery_id = d.id
		WHERE d.order_id = ?
		ORDER BY d.date, d.id, dl.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.Delivery, 0)
	for rows.Next() {
		var (
			d  storage.Delivery
			dl storage.DeliveryLine
		)
		if err := rows.Scan(&d.ID, &d.Date, &d.Note, &dl.ID, &dl.OrderLineID, &dl.Quantity); err != nil {
			return nil, err
		}
		dl.DeliveryID = d.ID
		if n := len(out); n > 0 && out[n-1].ID == d.ID {
			out[n-1].Lines = append(out[n-1].Lines, dl)
			continue
		}
		d.OrderID = orderID
		d.Lines = []storage.DeliveryLine{dl}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetOrders lists the orders of a project with their lines.
func (s *Storage) GetOrders(ctx context.Context, projectID int64) ([]storage.PurchaseOrder, error) {
	const op = "storage.mysql.GetOrders"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM purchase_orders WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	orders := make([]storage.PurchaseOrder, 0)
	index := make(map[int64]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines, err := queryOrderLines(ctx, s.db,
		`order_id IN (SELECT id FROM purchase_orders WHERE project_id = ?) ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: lines: %w", op, err)
	}
	for _, l := range lines {
		i := index[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return orders, nil
}

// CreateDelivery books the delivery under the order lock, re-checking the
// order status and every line's remaining quantity, and advances the order
// status in the same transaction.
func (s *Storage) CreateDelivery(ctx context.Context, nd storage.NewDelivery) (*storage.Delivery, error) {
	const op = "storage.mysql.CreateDelivery"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	order, err := getOrder(ctx, tx, nd.OrderID, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.Lines, err = queryOrderLines(ctx, tx, `order_id = ? ORDER BY id FOR UPDATE`, nd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: lines: %w", op, err)
	}

	if err := workflow.CheckDelivery(order, nd.Items); err != nil {
		return nil, err
	}
	items := workflow.MergeItems(nd.Items)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO deliveries (order_id, date, note) VALUES (?, ?, ?)`,
		nd.OrderID, nd.Date.Format("2006-01-02"), nd.Note)
	if err != nil {
		return nil, fmt.Errorf("%s: insert delivery: %w", op, err)
	}
	deliveryID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	delivery := &storage.Delivery{ID: deliveryID, OrderID: nd.OrderID, Date: nd.Date, Note: nd.Note}
	for _, it := range items {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO delivery_lines (delivery_id, order_line_id, quantity) VALUES (?, ?, ?)`,
			deliveryID, it.OrderLineID, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%s: insert delivery line: %w", op, err)
		}
		lineID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE order_lines SET delivered_qty = delivered_qty + ? WHERE id = ?`,
			it.Quantity, it.OrderLineID); err != nil {
			return nil, fmt.Errorf("%s: update line: %w", op, mapError(err, "order line"))
		}

		for i := range order.Lines {
			if order.Lines[i].ID == it.OrderLineID {
				order.Lines[i].DeliveredQty = order.Lines[i].DeliveredQty.Add(it.Quantity)
			}
		}
		delivery.Lines = append(delivery.Lines, storage.DeliveryLine{
			ID: lineID, DeliveryID: deliveryID, OrderLineID: it.OrderLineID, Quantity: it.Quantity,
		})
	}

	status, _, err := workflow.OrderStatusAfterDelivery(order.Status, order.Lines)
	if err != nil {
		return nil, err
	}
	if status != order.Status {
		if _, err := tx.ExecContext(ctx,
			`UPDATE purchase_orders SET status = ? WHERE id = ?`, status, nd.OrderID); err != nil {
			return nil, fmt.Errorf("%s: update status: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return delivery, nil
}

func (s *Storage) SetOrderStatus(ctx context.Context, id int64, from, to storage.OrderStatus) error {
	const op = "storage.mysql.SetOrderStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE purchase_orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return s.staleStatus(ctx, "purchase_orders", "purchase order", id)
	}
	return nil
}

func (s *Storage) UpdateOrderLine(ctx context.Context, orderID, lineID int64, upd storage.LineUpdate) error {
	const op = "storage.mysql.UpdateOrderLine"

	var set setList
	if upd.Quantity != nil {
		set.add("quantity", *upd.Quantity)
	}
	if upd.Price != nil {
		set.add("unit_price", *upd.Price)
	}
	if set.empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	order, err := getOrder(ctx, tx, orderID, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckOrderDraft(order.Status, "edit"); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE order_lines SET `+set.clause()+` WHERE id = ? AND order_id = ?`, append(set.args, lineID, orderID)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err, "order line"))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	} else if n == 0 {
		return storage.NotFound("order line", lineID)
	}
	return tx.Commit()
}

func (s *Storage) DeleteOrder(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	order, err := getOrder(ctx, tx, id, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckOrderDraft(order.Status, "delete"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM purchase_orders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err, "purchase order"))
	}
	return tx.Commit()
}
