package models

import (
	"etix/src/types"
	"time"
)

// Ticket is the durable record of a paid admission. Exactly one row exists
// per payment reference; the unique index on payment_reference is the
// idempotency guard for reconciliation.
type Ticket struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	TicketNumber string `gorm:"uniqueIndex" json:"ticket_number,omitempty"`
	EventID      uint   `json:"event_id,omitempty"`
	UserID       uint   `json:"user_id,omitempty"`
	Quantity     uint   `json:"qty,omitempty"`

	// Price is the per-unit amount actually charged, in minor units.
	Price            types.Money         `json:"price"`
	QRPayload        string              `json:"-"`
	PaymentReference string              `gorm:"uniqueIndex" json:"payment_reference,omitempty"`
	PaymentStatus    types.PaymentStatus `gorm:"default:'pending'" json:"payment_status,omitempty"`
	Status           types.TicketStatus  `gorm:"default:'pending'" json:"status,omitempty"`
	PurchaseDate     time.Time           `json:"purchase_date,omitempty"`
	UsedAt           *time.Time          `json:"used_at,omitempty"`

	Event Event `json:"event,omitempty"`
	User  User  `json:"-"`

	types.Timestamps
}
