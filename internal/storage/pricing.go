package storage

import "github.com/shopspring/decimal"

// PriceEntry is one row of a supplier price list or a subcontractor rate list.
// PartyID is the supplier or subcontractor, SubjectID the product or library
// position being priced.
type PriceEntry struct {
	ID        int64           `json:"id"`
	PartyID   int64           `json:"party_id"`
	SubjectID int64           `json:"subject_id"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
}

type NewSupplierPrice struct {
	SupplierID int64           `json:"supplier_id"`
	ProductID  int64           `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
}

type NewSubcontractorRate struct {
	SubcontractorID   int64           `json:"subcontractor_id"`
	LibraryPositionID int64           `json:"library_position_id"`
	Rate              decimal.Decimal `json:"rate"`
}
