package wallet

import (
	"context"
	"errors"
	"etix/src/inventory"
	"etix/src/models"
	"etix/src/types"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger credits refunds to user balances. A refund is one database
// transaction: the ticket leaves the active pool, the balance grows, a REF-
// transaction row records the movement, and seats a confirmed ticket held
// return to the event. Either all of it lands or none of it does.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Balance(ctx context.Context, userID uint) (types.Money, error) {
	var user models.User
	if err := l.db.WithContext(ctx).
		Select("id", "balance").
		Where("id = ?", userID).
		First(&user).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: user %d", types.ErrNotFound, userID)
		}
		return 0, err
	}
	return user.Balance, nil
}

// CreditRefund settles a refund for a ticket. The guarded ticket update is
// the idempotency gate: a second call finds payment_status already refunded,
// affects zero rows, and aborts before any money moves. The guard is keyed
// on the status the caller read, so the release decision below cannot drift
// from the row that was actually flipped: a pending ticket never held a
// seat and releases nothing.
func (l *Ledger) CreditRefund(ctx context.Context, ticket *models.Ticket, amount types.Money, percentage uint, reason string) (*models.Transaction, error) {
	if ticket.Status != types.TICKET_PENDING && ticket.Status != types.TICKET_CONFIRMED {
		return nil, fmt.Errorf("%w: ticket %d is %s", types.ErrInvalidState, ticket.ID, ticket.Status)
	}
	txn := &models.Transaction{
		ID:               uuid.New(),
		Reference:        fmt.Sprintf("REF-%s", ticket.PaymentReference),
		PaymentReference: ticket.PaymentReference,
		TicketID:         ticket.ID,
		UserID:           ticket.UserID,
		Amount:           amount,
		Percentage:       percentage,
		Reason:           reason,
		Status:           types.TRANSACTION_COMPLETED,
		Metadata: types.JSONB{
			"event":  ticket.EventID,
			"qty":    ticket.Quantity,
			"ticket": ticket.TicketNumber,
		},
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ticket{}).
			Where("id = ? AND payment_status = ? AND status = ?",
				ticket.ID,
				types.PAYMENT_SUCCESSFUL,
				ticket.Status,
			).
			Updates(map[string]any{
				"status":         types.TICKET_CANCELED,
				"payment_status": types.PAYMENT_REFUNDED,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: ticket %d is not refundable", types.ErrInvalidState, ticket.ID)
		}
		if amount > 0 {
			if err := tx.Model(&models.User{}).
				Where("id = ?", ticket.UserID).
				UpdateColumn("balance", gorm.Expr("balance + ?", amount)).
				Error; err != nil {
				return err
			}
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if ticket.Status != types.TICKET_CONFIRMED {
			return nil
		}
		// Release fails on a zero-row update, rolling the whole refund back
		// rather than committing a credit with the seats unaccounted for.
		return inventory.NewLedger(tx).Release(ctx, ticket.EventID, ticket.Quantity)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[wallet] refunded %d to user %d for ticket %d (%d%%)\n", amount, ticket.UserID, ticket.ID, percentage)
	return txn, nil
}
