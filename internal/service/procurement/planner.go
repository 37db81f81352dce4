package procurement

import (
	"sort"

	"github.com/shopspring/decimal"

	"estimate-backend/internal/storage"
)

// materialKey identifies one order line inside a supplier group. Components
// without a product are grouped by name and unit.
type materialKey struct {
	productID int64
	name      string
	unit      string
}

func keyOfMaterial(m storage.MaterialComponent) materialKey {
	if m.ProductID != nil {
		return materialKey{productID: *m.ProductID}
	}
	return materialKey{name: m.Name, unit: m.Unit}
}

type laborKey struct {
	description string
	unit        string
}

// PlanOrders groups the resolved material components of a revision by
// supplier. Each group becomes one draft order with one line per product;
// the line quantity is the sum of norm x position quantity and the price is
// taken from the first component in position order. Components without a
// supplier are not ordered and are counted in skipped.
func PlanOrders(rev storage.Revision) (orders []storage.PurchaseOrder, skipped int) {
	type group struct {
		order storage.PurchaseOrder
		index map[materialKey]int
	}

	groups := make(map[int64]*group)
	var seen []int64

	for _, pos := range sortedPositions(rev.Positions) {
		for _, m := range pos.Materials {
			if m.SupplierID == nil {
				skipped++
				continue
			}

			g, ok := groups[*m.SupplierID]
			if !ok {
				g = &group{
					order: storage.PurchaseOrder{
						ProjectID:  rev.ProjectID,
						RevisionID: rev.ID,
						SupplierID: *m.SupplierID,
						Status:     storage.OrderDraft,
					},
					index: make(map[materialKey]int),
				}
				groups[*m.SupplierID] = g
				seen = append(seen, *m.SupplierID)
			}

			qty := m.Norm.Mul(pos.Quantity)
			key := keyOfMaterial(m)
			if i, ok := g.index[key]; ok {
				g.order.Lines[i].Quantity = g.order.Lines[i].Quantity.Add(qty)
				continue
			}

			g.index[key] = len(g.order.Lines)
			g.order.Lines = append(g.order.Lines, storage.OrderLine{
				ProductID:    m.ProductID,
				Name:         m.Name,
				Unit:         m.Unit,
				Quantity:     qty,
				UnitPrice:    m.UnitPrice,
				DeliveredQty: decimal.Zero,
			})
		}
	}

	orders = make([]storage.PurchaseOrder, 0, len(seen))
	for _, id := range seen {
		orders = append(orders, groups[id].order)
	}
	return orders, skipped
}

// PlanContracts does for labor what PlanOrders does for materials, grouping
// by subcontractor and merging lines by description and unit.
func PlanContracts(rev storage.Revision) (contracts []storage.Contract, skipped int) {
	type group struct {
		contract storage.Contract
		index    map[laborKey]int
	}

	groups := make(map[int64]*group)
	var seen []int64

	for _, pos := range sortedPositions(rev.Positions) {
		for _, l := range pos.Labor {
			if l.SubcontractorID == nil {
				skipped++
				continue
			}

			g, ok := groups[*l.SubcontractorID]
			if !ok {
				g = &group{
					contract: storage.Contract{
						ProjectID:       rev.ProjectID,
						RevisionID:      rev.ID,
						SubcontractorID: *l.SubcontractorID,
						Status:          storage.ContractDraft,
					},
					index: make(map[laborKey]int),
				}
				groups[*l.SubcontractorID] = g
				seen = append(seen, *l.SubcontractorID)
			}

			qty := l.Norm.Mul(pos.Quantity)
			key := laborKey{description: l.Description, unit: l.Unit}
			if i, ok := g.index[key]; ok {
				line := &g.contract.Lines[i]
				line.Quantity = line.Quantity.Add(qty)
				line.Value = line.Quantity.Mul(line.Rate)
				continue
			}

			g.index[key] = len(g.contract.Lines)
			g.contract.Lines = append(g.contract.Lines, storage.ContractLine{
				Description: l.Description,
				Unit:        l.Unit,
				Quantity:    qty,
				Rate:        l.Rate,
				Value:       qty.Mul(l.Rate),
				ExecutedQty: decimal.Zero,
			})
		}
	}

	contracts = make([]storage.Contract, 0, len(seen))
	for _, id := range seen {
		contracts = append(contracts, groups[id].contract)
	}
	return contracts, skipped
}

func sortedPositions(in []storage.EstimatePosition) []storage.EstimatePosition {
	out := make([]storage.EstimatePosition, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}
