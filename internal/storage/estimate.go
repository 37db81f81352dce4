package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type Revision struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Number    int       `json:"number"`
	Locked    bool      `json:"locked"`
	Accepted  bool      `json:"accepted"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`

	Positions []EstimatePosition `json:"positions,omitempty"`
}

type EstimatePosition struct {
	ID                int64           `json:"id"`
	RevisionID        int64           `json:"revision_id"`
	LibraryPositionID *int64          `json:"library_position_id"`
	SortOrder         int             `json:"sort_order"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Quantity          decimal.Decimal `json:"quantity"`
	MarkupPercent     decimal.Decimal `json:"markup_percent"`
	Notes             string          `json:"notes"`

	Labor     []LaborComponent    `json:"labor"`
	Materials []MaterialComponent `json:"materials"`
}

// LaborComponent is a snapshot of a library labor norm with the rate that was
// resolved when the line was created.
type LaborComponent struct {
	ID              int64           `json:"id"`
	PositionID      int64           `json:"position_id"`
	Description     string          `json:"description"`
	Unit            string          `json:"unit"`
	Norm            decimal.Decimal `json:"norm"`
	Rate            decimal.Decimal `json:"rate"`
	SubcontractorID *int64          `json:"subcontractor_id"`
}

// MaterialComponent is a snapshot of a library material norm with the price
// that was resolved when the line was created.
type MaterialComponent struct {
	ID         int64           `json:"id"`
	PositionID int64           `json:"position_id"`
	ProductID  *int64          `json:"product_id"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Norm       decimal.Decimal `json:"norm"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	SupplierID *int64          `json:"supplier_id"`
}

// PositionUpdate carries optional edits of an estimate line.
type PositionUpdate struct {
	Name          *string          `json:"name"`
	Unit          *string          `json:"unit"`
	Quantity      *decimal.Decimal `json:"quantity"`
	MarkupPercent *decimal.Decimal `json:"markup_percent"`
	Notes         *string          `json:"notes"`
}

type MaterialUpdate struct {
	SupplierID *int64           `json:"supplier_id"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	Norm       *decimal.Decimal `json:"norm"`
}

type LaborUpdate struct {
	SubcontractorID *int64           `json:"subcontractor_id"`
	Rate            *decimal.Decimal `json:"rate"`
	Norm            *decimal.Decimal `json:"norm"`
}
