package cart

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineTotal computes quantity × unitPrice × (1 − discountPercent/100) without
// rounding. Callers round once at the edge via Round2.
func LineTotal(unitPrice float64, quantity int, discountPercent float64) decimal.Decimal {
	total := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	if discountPercent <= 0 {
		return total
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discountPercent).Div(hundred))
	return total.Mul(factor)
}

// ApplyPercentDiscount reduces amount by percent.
func ApplyPercentDiscount(amount decimal.Decimal, percent float64) decimal.Decimal {
	if percent <= 0 {
		return amount
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(percent).Div(hundred))
	return amount.Mul(factor)
}

// Round2 rounds a money amount to two decimal places.
func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// recompute derives every per-item and cart-level aggregate from the raw
// quantities, prices and discounts currently on the cart. It is the only
// place totals are calculated, so recomputing from the same inputs always
// yields the same result.
func (c *Cart) recompute() {
	instant := decimal.Zero
	prepaid := decimal.Zero

	for i := range c.Items {
		it := &c.Items[i]
		it.PrepaidQuantity = it.Quantity - it.InstantQuantity
		it.TotalPrice = Round2(LineTotal(it.UnitPrice, it.Quantity, it.DiscountPercent))

		instant = instant.Add(LineTotal(it.UnitPrice, it.InstantQuantity, it.DiscountPercent))
		prepaid = prepaid.Add(LineTotal(it.UnitPrice, it.PrepaidQuantity, it.DiscountPercent))
	}

	subtotal := instant.Add(prepaid)
	c.InstantTotal = Round2(instant)
	c.PrepaidTotal = Round2(prepaid)
	c.Subtotal = Round2(subtotal)
	c.Total = Round2(ApplyPercentDiscount(subtotal, c.PromoDiscountPercent))
}

// splitQuantity caps the instant portion at the live available stock.
func splitQuantity(quantity, availableStock int) int {
	if availableStock < 0 {
		availableStock = 0
	}
	if quantity < availableStock {
		return quantity
	}
	return availableStock
}
