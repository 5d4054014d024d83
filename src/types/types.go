package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_CANCELED  EventStatus = "cancelled"
	EVENT_COMPLETED EventStatus = "completed"
)

type TicketStatus string

const (
	TICKET_PENDING   TicketStatus = "pending"
	TICKET_CONFIRMED TicketStatus = "confirmed"
	TICKET_USED      TicketStatus = "used"
	TICKET_CANCELED  TicketStatus = "cancelled"
	TICKET_EXPIRED   TicketStatus = "expired"
)

type PaymentStatus string

const (
	PAYMENT_PENDING    PaymentStatus = "pending"
	PAYMENT_SUCCESSFUL PaymentStatus = "successful"
	PAYMENT_FAILED     PaymentStatus = "failed"
	PAYMENT_REFUNDED   PaymentStatus = "refunded"
)

type IntentStatus string

const (
	INTENT_PENDING IntentStatus = "pending"
	INTENT_FAILED  IntentStatus = "failed"
)

type TransactionStatus string

const (
	TRANSACTION_PENDING   TransactionStatus = "pending"
	TRANSACTION_COMPLETED TransactionStatus = "completed"
	TRANSACTION_FAILED    TransactionStatus = "failed"
)

type CreatePurchaseRequestBody struct {
	EventID  uint `json:"event" binding:"required"`
	Quantity uint `json:"qty" binding:"required,min=1"`
}

type CreateEventRequestBody struct {
	Title    string `json:"title" binding:"required"`
	Location string `json:"location" binding:"required"`
	Date     string `json:"date" binding:"required,bookabledate"`

	// TicketPrice is per unit, in minor currency units.
	TicketPrice  int64 `json:"ticket_price" binding:"required,min=0"`
	TotalTickets uint  `json:"total_tickets" binding:"required,min=1"`
}

type ReconcileURIParams struct {
	Reference string `uri:"reference" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateAdmissionRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type AuthTokenRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
