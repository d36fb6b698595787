package stock

import (
	"time"

	"github.com/google/uuid"
)

// UnitStatus is the lifecycle state of one sellable inventory unit.
// available → reserved → sold is the forward path; reserved → available is
// the compensating rollback. sold is absorbing.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "available"
	UnitReserved  UnitStatus = "reserved"
	UnitSold      UnitStatus = "sold"
)

// Unit is one concrete credential/account row. Each unit can be claimed by at
// most one order.
type Unit struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  string     `json:"productId"`
	Status     UnitStatus `json:"status"`
	SupplierID string     `json:"supplierId,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Content    string     `json:"content"`
}

// Availability is the read view the cart manager prices against: how many
// units are sellable right now and which volume discount that count unlocks.
type Availability struct {
	ProductID       string  `json:"productId"`
	Count           int     `json:"count"`
	DiscountPercent float64 `json:"discountPercent"`
}
