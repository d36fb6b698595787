package cart

import "time"

// Item is one cart line. Quantity is always the sum of the instant and
// prepaid portions; the instant portion never exceeds the available stock
// observed at the last recompute.
type Item struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Quantity        int     `json:"quantity"`
	InstantQuantity int     `json:"instantQuantity"`
	PrepaidQuantity int     `json:"prepaidQuantity"`
	UnitPrice       float64 `json:"unitPrice"`
	DiscountPercent float64 `json:"discountPercent"`
	TotalPrice      float64 `json:"totalPrice"`
}

// Cart is the per-owner aggregate stored as a single document.
type Cart struct {
	OwnerID              string    `json:"ownerId"`
	Items                []Item    `json:"items"`
	PromoCode            string    `json:"promoCode,omitempty"`
	PromoDiscountPercent float64   `json:"promoDiscountPercent,omitempty"`
	InstantTotal         float64   `json:"instantTotal"`
	PrepaidTotal         float64   `json:"prepaidTotal"`
	Subtotal             float64   `json:"subtotal"`
	Total                float64   `json:"total"`
	Version              int64     `json:"version"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) item(productID string) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) removeItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}
