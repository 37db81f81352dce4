package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"estimate-backend/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// CheckQuantity enforces 0 < qty <= total - done for a delivery or an
// execution entry against one line.
func CheckQuantity(lineID int64, qty, total, done decimal.Decimal) error {
	if !qty.IsPositive() {
		return storage.Invalid("quantity", fmt.Sprintf("line %d: quantity must be positive", lineID))
	}
	remaining := total.Sub(done)
	if qty.GreaterThan(remaining) {
		return &storage.QuantityExceededError{LineID: lineID, Requested: qty, Remaining: remaining}
	}
	return nil
}

// Percent is round(100 * done / total); an empty line counts as 0.
func Percent(done, total decimal.Decimal) int {
	if !total.IsPositive() {
		return 0
	}
	return int(done.Mul(hundred).Div(total).Round(0).IntPart())
}

// Ratio renders "done/total" for display.
func Ratio(done, total decimal.Decimal) string {
	return done.String() + "/" + total.String()
}

// MeanPercent is the unweighted arithmetic mean of line percentages.
func MeanPercent(percents []int) int {
	if len(percents) == 0 {
		return 0
	}
	sum := 0
	for _, p := range percents {
		sum += p
	}
	return int(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(percents)))).Round(0).IntPart())
}

// DecorateOrder fills the display fields of the order lines and returns the
// document percent.
func DecorateOrder(o *storage.PurchaseOrder) int {
	percents := make([]int, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		l.Delivered = Ratio(l.DeliveredQty, l.Quantity)
		l.Percent = Percent(l.DeliveredQty, l.Quantity)
		percents = append(percents, l.Percent)
	}
	return MeanPercent(percents)
}

// DecorateContract recomputes line completion percents and returns the
// document percent.
func DecorateContract(c *storage.Contract) int {
	percents := make([]int, 0, len(c.Lines))
	for i := range c.Lines {
		l := &c.Lines[i]
		l.CompletionPercent = Percent(l.ExecutedQty, l.Quantity)
		percents = append(percents, l.CompletionPercent)
	}
	return MeanPercent(percents)
}

// OrderStatusAfterDelivery returns the status an order should reach once its
// lines carry the given delivered quantities, and the steps to get there.
func OrderStatusAfterDelivery(current storage.OrderStatus, lines []storage.OrderLine) (storage.OrderStatus, []storage.OrderStatus, error) {
	target := storage.OrderDelivered
	for _, l := range lines {
		if l.DeliveredQty.LessThan(l.Quantity) {
			target = storage.OrderPartiallyDelivered
			break
		}
	}
	if current == target {
		return current, nil, nil
	}
	path, err := OrderMachine.Path(current, target, struct{}{})
	if err != nil {
		return current, nil, err
	}
	return target, path, nil
}

// ContractStatusAfterExecution moves a signed contract to completed once all
// of its lines are fully executed.
func ContractStatusAfterExecution(current storage.ContractStatus, lines []storage.ContractLine) storage.ContractStatus {
	if current != storage.ContractSigned {
		return current
	}
	for _, l := range lines {
		if l.ExecutedQty.LessThan(l.Quantity) {
			return current
		}
	}
	return storage.ContractCompleted
}

// MergeItems sums the quantities of delivery items that point at the same
// line, keeping the order in which lines first appear.
func MergeItems(items []storage.DeliveryItem) []storage.DeliveryItem {
	index := make(map[int64]int, len(items))
	out := make([]storage.DeliveryItem, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.OrderLineID]; ok {
			out[i].Quantity = out[i].Quantity.Add(it.Quantity)
			continue
		}
		index[it.OrderLineID] = len(out)
		out = append(out, it)
	}
	return out
}

// CheckDelivery validates a delivery against the current state of the order.
// The lines of order are not modified.
func CheckDelivery(order *storage.PurchaseOrder, items []storage.DeliveryItem) error {
	if err := CheckDeliverable(order.Status); err != nil {
		return err
	}
	if len(items) == 0 {
		return storage.Invalid("items", "at least one line is required")
	}
	for _, it := range items {
		if !it.Quantity.IsPositive() {
			return storage.Invalid("quantity", fmt.Sprintf("line %d: quantity must be positive", it.OrderLineID))
		}
	}
	for _, it := range MergeItems(items) {
		line := findOrderLine(order.Lines, it.OrderLineID)
		if line == nil {
			return storage.NotFound("order line", it.OrderLineID)
		}
		if err := CheckQuantity(line.ID, it.Quantity, line.Quantity, line.DeliveredQty); err != nil {
			return err
		}
	}
	return nil
}

func findOrderLine(lines []storage.OrderLine, id int64) *storage.OrderLine {
	for i := range lines {
		if lines[i].ID == id {
			return &lines[i]
		}
	}
	return nil
}
