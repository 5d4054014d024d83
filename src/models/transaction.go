package models

import (
	"etix/src/types"

	"github.com/google/uuid"
)

// Transaction records a monetary movement against a ticket. Refund rows
// carry a REF-<payment reference> reference for traceability back to the
// original charge.
type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	Reference        string                  `gorm:"uniqueIndex" json:"reference"`
	PaymentReference string                  `json:"payment_reference,omitempty"`
	TicketID         uint                    `json:"ticket_id,omitempty"`
	UserID           uint                    `json:"user_id,omitempty"`
	Amount           types.Money             `json:"amount"`
	Percentage       uint                    `json:"percentage,omitempty"`
	Reason           string                  `json:"reason,omitempty"`
	Status           types.TransactionStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Metadata         types.JSONB             `gorm:"type:jsonb" json:"metadata,omitempty"`

	Ticket Ticket `json:"-"`

	types.Timestamps
}
