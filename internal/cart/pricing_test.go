package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name            string
		unitPrice       float64
		quantity        int
		discountPercent float64
		want            float64
	}{
		{"no discount", 1000, 2, 0, 2000},
		{"ten percent off", 1000, 5, 10, 4500},
		{"fractional price", 19.99, 3, 0, 59.97},
		{"rounding", 33.33, 3, 5, 94.99}, // 99.99 × 0.95 = 94.9905
		{"zero quantity", 1000, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(LineTotal(tt.unitPrice, tt.quantity, tt.discountPercent)))
		})
	}
}

// Totals are a pure function of the item list: recomputing twice from the
// same inputs yields identical aggregates.
func TestRecompute_Deterministic(t *testing.T) {
	c := &Cart{
		OwnerID: "1",
		Items: []Item{
			{ProductID: "P1", Quantity: 5, InstantQuantity: 2, UnitPrice: 1000, DiscountPercent: 10},
			{ProductID: "P2", Quantity: 1, InstantQuantity: 1, UnitPrice: 49.90},
		},
		PromoDiscountPercent: 10,
	}

	c.recompute()
	first := *c
	firstItems := append([]Item(nil), c.Items...)

	c.recompute()
	assert.Equal(t, first.InstantTotal, c.InstantTotal)
	assert.Equal(t, first.PrepaidTotal, c.PrepaidTotal)
	assert.Equal(t, first.Subtotal, c.Subtotal)
	assert.Equal(t, first.Total, c.Total)
	assert.Equal(t, firstItems, c.Items)
}

func TestRecompute_PromoAppliesToSubtotalOnly(t *testing.T) {
	c := &Cart{
		Items: []Item{
			{ProductID: "P1", Quantity: 5, InstantQuantity: 2, UnitPrice: 1000, DiscountPercent: 10},
		},
		PromoDiscountPercent: 10,
	}
	c.recompute()

	assert.Equal(t, 4500.0, c.Items[0].TotalPrice)
	assert.Equal(t, 4500.0, c.Subtotal)
	assert.Equal(t, 4050.0, c.Total)
	assert.Equal(t, 1800.0, c.InstantTotal)
	assert.Equal(t, 2700.0, c.PrepaidTotal)
}

func TestSplitQuantity(t *testing.T) {
	assert.Equal(t, 2, splitQuantity(5, 2))
	assert.Equal(t, 5, splitQuantity(5, 9))
	assert.Equal(t, 0, splitQuantity(5, 0))
	assert.Equal(t, 0, splitQuantity(5, -3))
}
