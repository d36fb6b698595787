package catalog

import "time"

// StockPolicy says how a product is fulfilled when stock runs out.
type StockPolicy string

const (
	// PolicyInstant products only sell what is on hand.
	PolicyInstant StockPolicy = "instant"
	// PolicyPreorder products accept backorders for the missing portion.
	PolicyPreorder StockPolicy = "preorder"
)

type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	StockPolicy StockPolicy `json:"stockPolicy"`
	CreatedAt   time.Time   `json:"createdAt"`
}
