package notify

import (
	"encoding/json"
	"time"
)

// EventEnvelope is the shared wrapping for every published notification
// event. Consumers use PartitionKey + Sequence to deduplicate.
type EventEnvelope struct {
	EventName     string          `json:"eventName"`
	EventVersion  int             `json:"eventVersion"`
	EventID       string          `json:"eventId"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Producer      string          `json:"producer"`
	PartitionKey  string          `json:"partitionKey"`
	Sequence      int64           `json:"sequence,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

const (
	EventOrderCreated     = "order.created"
	EventOrderDelivered   = "order.delivered"
	EventOrderBackordered = "order.backordered"
	EventReferralRewarded = "referral.rewarded"
)

// OrderLine is one order item as it appears in notification payloads.
type OrderLine struct {
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	Quantity          int    `json:"quantity"`
	DeliveredQuantity int    `json:"deliveredQuantity"`
}

type OrderCreatedPayload struct {
	OrderID string      `json:"orderId"`
	UserID  int64       `json:"userId"`
	Total   float64     `json:"total"`
	Lines   []OrderLine `json:"lines"`
}

type OrderDeliveredPayload struct {
	OrderID string      `json:"orderId"`
	UserID  int64       `json:"userId"`
	Lines   []OrderLine `json:"lines"`
}

// OrderBackorderedPayload reports the undelivered remainder and the amount
// credited back to the user's balance for it.
type OrderBackorderedPayload struct {
	OrderID  string      `json:"orderId"`
	UserID   int64       `json:"userId"`
	Refunded float64     `json:"refunded"`
	Lines    []OrderLine `json:"lines"`
}

type ReferralRewardedPayload struct {
	OrderID    string  `json:"orderId"`
	ReferrerID int64   `json:"referrerId"`
	BuyerID    int64   `json:"buyerId"`
	Level      int     `json:"level"`
	Amount     float64 `json:"amount"`
}
