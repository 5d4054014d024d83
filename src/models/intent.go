package models

import (
	"etix/src/types"
	"time"
)

// PaymentIntent is the short-lived record of a purchase awaiting gateway
// confirmation. It lives in the cache under the gateway reference and is
// never persisted; expiry via TTL is the normal fate of an abandoned
// purchase. Only Status ever changes after creation.
type PaymentIntent struct {
	Reference string             `json:"reference"`
	EventID   uint               `json:"event_id"`
	UserID    uint               `json:"user_id"`
	Quantity  uint               `json:"qty"`
	UnitPrice types.Money        `json:"unit_price"`
	Amount    types.Money        `json:"amount"`
	Status    types.IntentStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}
