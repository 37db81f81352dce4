package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerType string

const (
	LedgerMaterial LedgerType = "material"
	LedgerLabor    LedgerType = "labor"
	LedgerOther    LedgerType = "other"
)

func (t LedgerType) Valid() bool {
	switch t {
	case LedgerMaterial, LedgerLabor, LedgerOther:
		return true
	}
	return false
}

// LedgerEntry records realized cost. It references at most one of an order
// or a contract.
type LedgerEntry struct {
	ID          int64           `json:"id"`
	ProjectID   int64           `json:"project_id"`
	Type        LedgerType      `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     *int64          `json:"order_id"`
	ContractID  *int64          `json:"contract_id"`
	Paid        bool            `json:"paid"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

type LedgerTotals struct {
	Type   LedgerType      `json:"type"`
	Paid   decimal.Decimal `json:"paid"`
	Unpaid decimal.Decimal `json:"unpaid"`
}

type LedgerReport struct {
	Entries []LedgerEntry  `json:"entries"`
	Totals  []LedgerTotals `json:"totals"`
}
