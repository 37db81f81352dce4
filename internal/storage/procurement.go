package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderDraft              OrderStatus = "draft"
	OrderSent               OrderStatus = "sent"
	OrderPartiallyDelivered OrderStatus = "partially_delivered"
	OrderDelivered          OrderStatus = "delivered"
	OrderSettled            OrderStatus = "settled"
)

type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractSent      ContractStatus = "sent"
	ContractSigned    ContractStatus = "signed"
	ContractCompleted ContractStatus = "completed"
	ContractSettled   ContractStatus = "settled"
)

type PurchaseOrder struct {
	ID         int64       `json:"id"`
	ProjectID  int64       `json:"project_id"`
	RevisionID int64       `json:"revision_id"`
	SupplierID int64       `json:"supplier_id"`
	Number     string      `json:"number"`
	BatchID    string      `json:"batch_id"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	Percent    int         `json:"percent"`

	Lines      []OrderLine `json:"lines"`
	Deliveries []Delivery  `json:"deliveries,omitempty"`
}

type OrderLine struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    *int64          `json:"product_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DeliveredQty decimal.Decimal `json:"delivered_qty"`

	// Filled on read for display.
	Delivered string `json:"delivered"`
	Percent   int    `json:"percent"`
}

type Delivery struct {
	ID      int64          `json:"id"`
	OrderID int64          `json:"order_id"`
	Date    time.Time      `json:"date"`
	Note    string         `json:"note"`
	Lines   []DeliveryLine `json:"lines"`
}

type DeliveryLine struct {
	ID          int64           `json:"id"`
	DeliveryID  int64           `json:"delivery_id"`
	OrderLineID int64           `json:"order_line_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type Contract struct {
	ID              int64          `json:"id"`
	ProjectID       int64          `json:"project_id"`
	RevisionID      int64          `json:"revision_id"`
	SubcontractorID int64          `json:"subcontractor_id"`
	Number          string         `json:"number"`
	BatchID         string         `json:"batch_id"`
	Status          ContractStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	Percent         int            `json:"percent"`

	Lines []ContractLine `json:"lines"`
}

type ContractLine struct {
	ID                int64           `json:"id"`
	ContractID        int64           `json:"contract_id"`
	Description       string          `json:"description"`
	Unit              string          `json:"unit"`
	Quantity          decimal.Decimal `json:"quantity"`
	Rate              decimal.Decimal `json:"rate"`
	Value             decimal.Decimal `json:"value"`
	ExecutedQty       decimal.Decimal `json:"executed_qty"`
	CompletionPercent int             `json:"completion_percent"`

	Entries []ExecutionEntry `json:"entries,omitempty"`
}

type ExecutionEntry struct {
	ID             int64           `json:"id"`
	ContractLineID int64           `json:"contract_line_id"`
	Date           time.Time       `json:"date"`
	Quantity       decimal.Decimal `json:"quantity"`
	Note           string          `json:"note"`
}

// DeliveryItem is one requested line of a delivery.
type DeliveryItem struct {
	OrderLineID int64           `json:"order_line_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type NewDelivery struct {
	OrderID int64          `json:"order_id"`
	Date    time.Time      `json:"date"`
	Note    string         `json:"note"`
	Items   []DeliveryItem `json:"items"`
}

type NewExecution struct {
	ContractLineID int64           `json:"contract_line_id"`
	Date           time.Time       `json:"date"`
	Quantity       decimal.Decimal `json:"quantity"`
	Note           string          `json:"note"`
}

// GenerationResult is what one draft generation run produced.
type GenerationResult struct {
	BatchID   string          `json:"batch_id"`
	Orders    []PurchaseOrder `json:"orders,omitempty"`
	Contracts []Contract      `json:"contracts,omitempty"`
	Skipped   int             `json:"skipped"`
}

type LineUpdate struct {
	Quantity *decimal.Decimal `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}
