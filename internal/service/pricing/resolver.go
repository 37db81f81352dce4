package pricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"estimate-backend/internal/storage"
)

type PriceStorage interface {
	GetSupplierPrices(ctx context.Context, productID int64) ([]storage.PriceEntry, error)
	GetSubcontractorRates(ctx context.Context, libraryPositionID int64) ([]storage.PriceEntry, error)

	CreateSupplierPrice(ctx context.Context, p storage.NewSupplierPrice) (int64, error)
	CreateSubcontractorRate(ctx context.Context, r storage.NewSubcontractorRate) (int64, error)
	SetSupplierPriceActive(ctx context.Context, id int64, active bool) error
	SetSubcontractorRateActive(ctx context.Context, id int64, active bool) error
}

// Resolution is the winning quote: the supplier or subcontractor and its price.
type Resolution struct {
	PartyID int64           `json:"party_id"`
	Price   decimal.Decimal `json:"price"`
}

type PriceService struct {
	storage PriceStorage
}

func NewPriceService(storage PriceStorage) *PriceService {
	return &PriceService{storage: storage}
}

// Cheapest picks the active entry with the lowest price. Equal prices are
// broken by the lowest entry id, so the result never depends on the order
// the entries were loaded in.
func Cheapest(entries []storage.PriceEntry) (storage.PriceEntry, bool) {
	active := make([]storage.PriceEntry, 0, len(entries))
	for _, e := range entries {
		if e.Active {
			active = append(active, e)
		}
	}
	if len(active) == 0 {
		return storage.PriceEntry{}, false
	}

	sort.Slice(active, func(i, j int) bool {
		if c := active[i].Price.Cmp(active[j].Price); c != 0 {
			return c < 0
		}
		return active[i].ID < active[j].ID
	})

	return active[0], true
}

func (s *PriceService) ResolveCheapestSupplier(ctx context.Context, productID int64) (Resolution, bool, error) {
	const op = "service.pricing.ResolveCheapestSupplier"

	entries, err := s.storage.GetSupplierPrices(ctx, productID)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("%s: %w", op, err)
	}

	best, ok := Cheapest(entries)
	if !ok {
		return Resolution{}, false, nil
	}
	return Resolution{PartyID: best.PartyID, Price: best.Price}, true, nil
}

func (s *PriceService) ResolveCheapestSubcontractor(ctx context.Context, libraryPositionID int64) (Resolution, bool, error) {
	const op = "service.pricing.ResolveCheapestSubcontractor"

	entries, err := s.storage.GetSubcontractorRates(ctx, libraryPositionID)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("%s: %w", op, err)
	}

	best, ok := Cheapest(entries)
	if !ok {
		return Resolution{}, false, nil
	}
	return Resolution{PartyID: best.PartyID, Price: best.Price}, true, nil
}
