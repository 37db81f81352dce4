package storage

import "github.com/shopspring/decimal"

// LibraryPosition is a reusable estimate template owned by master data.
type LibraryPosition struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Unit string `json:"unit"`
	Type string `json:"type"`

	Labor     []LibraryLaborComponent    `json:"labor"`
	Materials []LibraryMaterialComponent `json:"materials"`
}

type LibraryLaborComponent struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Norm        decimal.Decimal `json:"norm"`
	DefaultRate decimal.Decimal `json:"default_rate"`
}

type LibraryMaterialComponent struct {
	ID           int64           `json:"id"`
	ProductID    *int64          `json:"product_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Norm         decimal.Decimal `json:"norm"`
	DefaultPrice decimal.Decimal `json:"default_price"`
}

// Party is a supplier or a subcontractor as seen by read-only lookups.
type Party struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
