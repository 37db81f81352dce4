package rollup

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"estimate-backend/internal/storage"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPosition(t *testing.T) {
	p := storage.EstimatePosition{
		ID:            1,
		Quantity:      d("3"),
		MarkupPercent: d("30"),
		Labor:         []storage.LaborComponent{{Norm: d("0.5"), Rate: d("40")}},
		Materials: []storage.MaterialComponent{
			{Norm: d("2"), UnitPrice: d("7")},
			{Norm: d("1"), UnitPrice: d("1.5")},
		},
	}

	c := Position(p)

	assert.Equal(t, "20", c.LaborUnit.String())
	assert.Equal(t, "15.5", c.MaterialUnit.String())
	assert.Equal(t, "106.5", c.Net.String())
	assert.Equal(t, "138.45", c.Total.String())
}

func TestRevision(t *testing.T) {
	r := storage.Revision{
		ID: 4,
		Positions: []storage.EstimatePosition{
			{ID: 1, Quantity: d("2"), MarkupPercent: d("0"), Materials: []storage.MaterialComponent{{Norm: d("1"), UnitPrice: d("10")}}},
			{ID: 2, Quantity: d("1"), MarkupPercent: d("10"), Labor: []storage.LaborComponent{{Norm: d("2"), Rate: d("5")}}},
		},
	}

	c := Revision(r)

	assert.Len(t, c.Positions, 2)
	assert.Equal(t, "20", c.Material.String())
	assert.Equal(t, "10", c.Labor.String())
	assert.Equal(t, "31", c.Total.String())
}
