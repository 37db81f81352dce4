package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"estimate-backend/internal/storage"
)

type LedgerStorage interface {
	GetProject(ctx context.Context, id int64) (*storage.Project, error)
	GetOrder(ctx context.Context, id int64) (*storage.PurchaseOrder, error)
	GetContract(ctx context.Context, id int64) (*storage.Contract, error)

	CreateLedgerEntry(ctx context.Context, e storage.LedgerEntry) (int64, error)
	GetLedgerEntries(ctx context.Context, projectID int64) ([]storage.LedgerEntry, error)
	SetLedgerEntryPaid(ctx context.Context, id int64) error
}

type LedgerService struct {
	storage LedgerStorage
}

func NewLedgerService(storage LedgerStorage) *LedgerService {
	return &LedgerService{storage: storage}
}

// AddEntry records realized cost against a project, optionally linked to one
// of its orders or contracts.
func (s *LedgerService) AddEntry(ctx context.Context, e storage.LedgerEntry) (int64, error) {
	const op = "service.ledger.AddEntry"

	e.Type = storage.LedgerType(strings.ToLower(string(e.Type)))
	if !e.Type.Valid() {
		return 0, storage.Invalid("type", fmt.Sprintf("unknown ledger type %q", e.Type))
	}
	if !e.Amount.IsPositive() {
		return 0, storage.Invalid("amount", "must be positive")
	}
	if e.Date.IsZero() {
		return 0, storage.Invalid("date", "is required")
	}
	if e.OrderID != nil && e.ContractID != nil {
		return 0, storage.Invalid("order_id", "an entry links an order or a contract, not both")
	}

	if _, err := s.storage.GetProject(ctx, e.ProjectID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case e.OrderID != nil:
		o, err := s.storage.GetOrder(ctx, *e.OrderID)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if o.ProjectID != e.ProjectID {
			return 0, storage.Invalid("order_id", "order belongs to another project")
		}
	case e.ContractID != nil:
		c, err := s.storage.GetContract(ctx, *e.ContractID)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if c.ProjectID != e.ProjectID {
			return 0, storage.Invalid("contract_id", "contract belongs to another project")
		}
	}

	e.Paid = false
	id, err := s.storage.CreateLedgerEntry(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *LedgerService) MarkPaid(ctx context.Context, id int64) error {
	if err := s.storage.SetLedgerEntryPaid(ctx, id); err != nil {
		return fmt.Errorf("service.ledger.MarkPaid: %w", err)
	}
	return nil
}

// List returns the entries of a project with paid and unpaid totals per
// type. Every type is present in the totals, in enum order.
func (s *LedgerService) List(ctx context.Context, projectID int64) (*storage.LedgerReport, error) {
	entries, err := s.storage.GetLedgerEntries(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("service.ledger.List: %w", err)
	}
	return &storage.LedgerReport{Entries: entries, Totals: Totals(entries)}, nil
}

func Totals(entries []storage.LedgerEntry) []storage.LedgerTotals {
	types := []storage.LedgerType{storage.LedgerMaterial, storage.LedgerLabor, storage.LedgerOther}
	totals := make([]storage.LedgerTotals, len(types))
	index := make(map[storage.LedgerType]int, len(types))
	for i, t := range types {
		totals[i] = storage.LedgerTotals{Type: t, Paid: decimal.Zero, Unpaid: decimal.Zero}
		index[t] = i
	}

	for _, e := range entries {
		i, ok := index[e.Type]
		if !ok {
			continue
		}
		if e.Paid {
			totals[i].Paid = totals[i].Paid.Add(e.Amount)
		} else {
			totals[i].Unpaid = totals[i].Unpaid.Add(e.Amount)
		}
	}
	return totals
}
