package fulfillment

import (
	"context"
	"fmt"

	"estimate-backend/internal/storage"
	"estimate-backend/internal/workflow"
)

type FulfillmentStorage interface {
	GetOrder(ctx context.Context, id int64) (*storage.PurchaseOrder, error)
	GetOrders(ctx context.Context, projectID int64) ([]storage.PurchaseOrder, error)
	GetContract(ctx context.Context, id int64) (*storage.Contract, error)
	GetContracts(ctx context.Context, projectID int64) ([]storage.Contract, error)
	GetContractLine(ctx context.Context, id int64) (*storage.ContractLine, error)

	// CreateDelivery and CreateExecution re-check status and remaining
	// quantities under row locks and advance the document status in the
	// same transaction.
	CreateDelivery(ctx context.Context, d storage.NewDelivery) (*storage.Delivery, error)
	CreateExecution(ctx context.Context, e storage.NewExecution) (*storage.ExecutionEntry, error)

	SetOrderStatus(ctx context.Context, id int64, from, to storage.OrderStatus) error
	SetContractStatus(ctx context.Context, id int64, from, to storage.ContractStatus) error

	UpdateOrderLine(ctx context.Context, orderID, lineID int64, upd storage.LineUpdate) error
	DeleteOrder(ctx context.Context, id int64) error
	UpdateContractLine(ctx context.Context, contractID, lineID int64, upd storage.LineUpdate) error
	DeleteContract(ctx context.Context, id int64) error
}

type FulfillmentService struct {
	storage FulfillmentStorage
}

func NewFulfillmentService(storage FulfillmentStorage) *FulfillmentService {
	return &FulfillmentService{storage: storage}
}

func (s *FulfillmentService) GetOrder(ctx context.Context, id int64) (*storage.PurchaseOrder, error) {
	o, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.fulfillment.GetOrder: %w", err)
	}
	o.Percent = workflow.DecorateOrder(o)
	return o, nil
}

func (s *FulfillmentService) ListOrders(ctx context.Context, projectID int64) ([]storage.PurchaseOrder, error) {
	orders, err := s.storage.GetOrders(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("service.fulfillment.ListOrders: %w", err)
	}
	for i := range orders {
		orders[i].Percent = workflow.DecorateOrder(&orders[i])
	}
	return orders, nil
}

func (s *FulfillmentService) GetContract(ctx context.Context, id int64) (*storage.Contract, error) {
	c, err := s.storage.GetContract(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.fulfillment.GetContract: %w", err)
	}
	c.Percent = workflow.DecorateContract(c)
	return c, nil
}

func (s *FulfillmentService) ListContracts(ctx context.Context, projectID int64) ([]storage.Contract, error) {
	contracts, err := s.storage.GetContracts(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("service.fulfillment.ListContracts: %w", err)
	}
	for i := range contracts {
		contracts[i].Percent = workflow.DecorateContract(&contracts[i])
	}
	return contracts, nil
}

// RecordDelivery books a delivery of one or more order lines and returns the
// order as it stands afterwards.
func (s *FulfillmentService) RecordDelivery(ctx context.Context, d storage.NewDelivery) (*storage.PurchaseOrder, error) {
	const op = "service.fulfillment.RecordDelivery"

	if d.Date.IsZero() {
		return nil, storage.Invalid("date", "is required")
	}

	order, err := s.storage.GetOrder(ctx, d.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckDelivery(order, d.Items); err != nil {
		return nil, err
	}

	d.Items = workflow.MergeItems(d.Items)
	if _, err := s.storage.CreateDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetOrder(ctx, d.OrderID)
}

// RecordExecution books executed work against one contract line and returns
// the contract as it stands afterwards.
func (s *FulfillmentService) RecordExecution(ctx context.Context, e storage.NewExecution) (*storage.Contract, error) {
	const op = "service.fulfillment.RecordExecution"

	if e.Date.IsZero() {
		return nil, storage.Invalid("date", "is required")
	}
	if !e.Quantity.IsPositive() {
		return nil, storage.Invalid("quantity", "must be positive")
	}

	line, err := s.storage.GetContractLine(ctx, e.ContractLineID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	contract, err := s.storage.GetContract(ctx, line.ContractID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.CheckExecutable(contract.Status); err != nil {
		return nil, err
	}
	if err := workflow.CheckQuantity(line.ID, e.Quantity, line.Quantity, line.ExecutedQty); err != nil {
		return nil, err
	}

	if _, err := s.storage.CreateExecution(ctx, e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetContract(ctx, contract.ID)
}

func (s *FulfillmentService) TransitionOrder(ctx context.Context, id int64, to storage.OrderStatus) (*storage.PurchaseOrder, error) {
	const op = "service.fulfillment.TransitionOrder"

	order, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.OrderMachine.Check(order.Status, to, struct{}{}); err != nil {
		return nil, err
	}
	if err := s.storage.SetOrderStatus(ctx, id, order.Status, to); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order.Status = to
	order.Percent = workflow.DecorateOrder(order)
	return order, nil
}

func (s *FulfillmentService) TransitionContract(ctx context.Context, id int64, to storage.ContractStatus) (*storage.Contract, error) {
	const op = "service.fulfillment.TransitionContract"

	contract, err := s.storage.GetContract(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := workflow.ContractMachine.Check(contract.Status, to, struct{}{}); err != nil {
		return nil, err
	}
	if err := s.storage.SetContractStatus(ctx, id, contract.Status, to); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contract.Status = to
	contract.Percent = workflow.DecorateContract(contract)
	return contract, nil
}
