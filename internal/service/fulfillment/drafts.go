package fulfillment

import (
	"context"
	"fmt"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

func validateLineUpdate(upd storage.LineUpdate, priceField string) error {
	if upd.Quantity != nil && !upd.Quantity.IsPositive() {
		return storage.Invalid("quantity", "must be positive")
	}
	if upd.Price != nil && upd.Price.IsNegative() {
		return storage.Invalid(priceField, "must not be negative")
	}
	return nil
}

// UpdateOrderLine edits quantity or unit price of a line on a draft order.
func (s *FulfillmentService) UpdateOrderLine(ctx context.Context, orderID, lineID int64, upd storage.LineUpdate) error {
	const op = "service.fulfillment.UpdateOrderLine"

	if err := validateLineUpdate(upd, "unit_price"); err != nil {
		return err
	}

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckOrderDraft(order.Status, "edit"); err != nil {
		return err
	}

	found := false
	for _, l := range order.Lines {
		if l.ID == lineID {
			found = true
			break
		}
	}
	if !found {
		return storage.NotFound("order line", lineID)
	}

	if err := s.storage.UpdateOrderLine(ctx, orderID, lineID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FulfillmentService) DeleteOrder(ctx context.Context, id int64) error {
	const op = "service.fulfillment.DeleteOrder"

	order, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckOrderDraft(order.Status, "delete"); err != nil {
		return err
	}

	if err := s.storage.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateContractLine edits quantity or rate of a line on a draft contract.
// The line value follows.
func (s *FulfillmentService) UpdateContractLine(ctx context.Context, contractID, lineID int64, upd storage.LineUpdate) error {
	const op = "service.fulfillment.UpdateContractLine"

	if err := validateLineUpdate(upd, "rate"); err != nil {
		return err
	}

	contract, err := s.storage.GetContract(ctx, contractID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckContractDraft(contract.Status, "edit"); err != nil {
		return err
	}

	found := false
	for _, l := range contract.Lines {
		if l.ID == lineID {
			found = true
			break
		}
	}
	if !found {
		return storage.NotFound("contract line", lineID)
	}

	if err := s.storage.UpdateContractLine(ctx, contractID, lineID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FulfillmentService) DeleteContract(ctx context.Context, id int64) error {
	const op = "service.fulfillment.DeleteContract"

	contract, err := s.storage.GetContract(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckContractDraft(contract.Status, "delete"); err != nil {
		return err
	}

	if err := s.storage.DeleteContract(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
