// Package rollup computes the cost figures of estimate lines from their
// component snapshots.
package rollup

import (
	"github.com/shopspring/decimal"

	"estimate-backend/internal/storage"
)

var hundred = decimal.NewFromInt(100)

type PositionCost struct {
	PositionID   int64           `json:"position_id"`
	LaborUnit    decimal.Decimal `json:"labor_unit"`
	MaterialUnit decimal.Decimal `json:"material_unit"`
	Net          decimal.Decimal `json:"net"`
	Total        decimal.Decimal `json:"total"`
}

type RevisionCost struct {
	RevisionID int64           `json:"revision_id"`
	Positions  []PositionCost  `json:"positions"`
	Labor      decimal.Decimal `json:"labor"`
	Material   decimal.Decimal `json:"material"`
	Total      decimal.Decimal `json:"total"`
}

// Position: unit costs are sums of norm x rate/price; total is
// quantity x (labor + material) x (1 + markup/100), rounded to cents.
func Position(p storage.EstimatePosition) PositionCost {
	labor := decimal.Zero
	for _, c := range p.Labor {
		labor = labor.Add(c.Norm.Mul(c.Rate))
	}
	material := decimal.Zero
	for _, c := range p.Materials {
		material = material.Add(c.Norm.Mul(c.UnitPrice))
	}

	net := p.Quantity.Mul(labor.Add(material))
	markup := decimal.NewFromInt(1).Add(p.MarkupPercent.Div(hundred))

	return PositionCost{
		PositionID:   p.ID,
		LaborUnit:    labor.Round(2),
		MaterialUnit: material.Round(2),
		Net:          net.Round(2),
		Total:        net.Mul(markup).Round(2),
	}
}

func Revision(r storage.Revision) RevisionCost {
	out := RevisionCost{
		RevisionID: r.ID,
		Positions:  make([]PositionCost, 0, len(r.Positions)),
		Labor:      decimal.Zero,
		Material:   decimal.Zero,
		Total:      decimal.Zero,
	}
	for _, p := range r.Positions {
		c := Position(p)
		out.Positions = append(out.Positions, c)
		out.Labor = out.Labor.Add(c.LaborUnit.Mul(p.Quantity))
		out.Material = out.Material.Add(c.MaterialUnit.Mul(p.Quantity))
		out.Total = out.Total.Add(c.Total)
	}
	out.Labor = out.Labor.Round(2)
	out.Material = out.Material.Round(2)
	return out
}
