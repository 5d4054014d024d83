package tickets

import (
	"context"
	"errors"
	"etix/src/inventory"
	"etix/src/models"
	"etix/src/types"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger owns the ticket lifecycle. Every transition is a guarded UPDATE
// whose WHERE clause encodes the legal source states, so concurrent callers
// can never move a ticket along an illegal edge; settlement additionally
// wraps the insert, the seat decrement and the confirm in one transaction.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// SettleState reports what Settle did with a payment reference.
type SettleState int

const (
	// SettleConfirmed: this call took the seats and confirmed the ticket.
	SettleConfirmed SettleState = iota
	// SettleStarved: the payment is on record but the event sold out before
	// the seats could be taken; the ticket stays pending.
	SettleStarved
	// SettleDuplicate: an earlier call already settled this reference.
	SettleDuplicate
)

// Settle turns a paid reference into a confirmed ticket: the insert keyed by
// the unique payment_reference index, the guarded seat decrement and the
// confirm all run in one database transaction, so any failure along the way
// rolls the whole settlement back and a retry starts from nothing. Exactly
// one concurrent caller per reference commits a row; everyone else observes
// the committed outcome. A starved pending ticket is resumed: the guarded
// confirm doubles as the row lock, so only one retry reaches the decrement.
func (l *Ledger) Settle(ctx context.Context, ticket *models.Ticket) (*models.Ticket, SettleState, error) {
	state := SettleConfirmed
	settled := *ticket
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_reference"}},
			DoNothing: true,
		}).Create(&settled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return l.resume(ctx, tx, &settled, &state)
		}
		// Fresh row, invisible to other callers until commit.
		if err := inventory.NewLedger(tx).Decrement(ctx, settled.EventID, settled.Quantity); err != nil {
			if errors.Is(err, types.ErrInsufficientInventory) {
				// Paid but sold out. The row commits pending with the
				// payment recorded so support can refund or reseat.
				state = SettleStarved
				settled.PaymentStatus = types.PAYMENT_SUCCESSFUL
				return tx.Model(&models.Ticket{}).
					Where("id = ?", settled.ID).
					UpdateColumn("payment_status", types.PAYMENT_SUCCESSFUL).
					Error
			}
			return err
		}
		if err := tx.Model(&models.Ticket{}).
			Where("id = ?", settled.ID).
			Updates(map[string]any{
				"status":         types.TICKET_CONFIRMED,
				"payment_status": types.PAYMENT_SUCCESSFUL,
			}).Error; err != nil {
			return err
		}
		settled.Status = types.TICKET_CONFIRMED
		settled.PaymentStatus = types.PAYMENT_SUCCESSFUL
		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrInsufficientInventory) {
			// A resume rolled back; the ticket is still starved.
			return &settled, SettleStarved, nil
		}
		return nil, SettleConfirmed, err
	}
	return &settled, state, nil
}

// resume handles the conflict branch of Settle: the reference already has a
// row. Anything other than a starved pending ticket is a finished settlement;
// a starved one retries the seats.
func (l *Ledger) resume(ctx context.Context, tx *gorm.DB, settled *models.Ticket, state *SettleState) error {
	var existing models.Ticket
	if err := tx.Where("payment_reference = ?", settled.PaymentReference).First(&existing).Error; err != nil {
		return err
	}
	*settled = existing
	if existing.Status != types.TICKET_PENDING || existing.PaymentStatus != types.PAYMENT_SUCCESSFUL {
		*state = SettleDuplicate
		return nil
	}
	conf := tx.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", existing.ID, types.TICKET_PENDING).
		Updates(map[string]any{
			"status":         types.TICKET_CONFIRMED,
			"payment_status": types.PAYMENT_SUCCESSFUL,
		})
	if conf.Error != nil {
		return conf.Error
	}
	if conf.RowsAffected == 0 {
		// A concurrent resume won the row; hand back its outcome.
		if err := tx.Where("payment_reference = ?", settled.PaymentReference).First(settled).Error; err != nil {
			return err
		}
		*state = SettleDuplicate
		return nil
	}
	if err := inventory.NewLedger(tx).Decrement(ctx, existing.EventID, existing.Quantity); err != nil {
		// ErrInsufficientInventory rolls the confirm back.
		return err
	}
	settled.Status = types.TICKET_CONFIRMED
	settled.PaymentStatus = types.PAYMENT_SUCCESSFUL
	return nil
}

func (l *Ledger) FindByReference(ctx context.Context, reference string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := l.db.WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&ticket).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ticket for reference %s", types.ErrNotFound, reference)
		}
		return nil, err
	}
	return &ticket, nil
}

func (l *Ledger) FindByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := l.db.WithContext(ctx).
		Preload("Event").
		Where("id = ?", id).
		First(&ticket).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ticket %d", types.ErrNotFound, id)
		}
		return nil, err
	}
	return &ticket, nil
}

func (l *Ledger) FindByUser(ctx context.Context, userID uint) ([]models.Ticket, error) {
	var list []models.Ticket
	err := l.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).
		Error
	return list, err
}

// SetQRPayload attaches the sealed admission code once the row exists and
// its ID is known.
func (l *Ledger) SetQRPayload(ctx context.Context, ticketID uint, payload string) error {
	return l.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		UpdateColumn("qr_payload", payload).
		Error
}

// MarkUsed admits a ticket holder. Single-use: only a confirmed, paid ticket
// transitions, and on a zero-row update the current state decides whether the
// failure is a replay (already used) or an illegal edge.
func (l *Ledger) MarkUsed(ctx context.Context, ticketID uint, at time.Time) error {
	res := l.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND status = ? AND payment_status = ?", ticketID, types.TICKET_CONFIRMED, types.PAYMENT_SUCCESSFUL).
		Updates(map[string]any{
			"status":  types.TICKET_USED,
			"used_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ticket, err := l.FindByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status == types.TICKET_USED {
		return fmt.Errorf("%w: ticket %d", types.ErrAlreadyUsed, ticketID)
	}
	return fmt.Errorf("%w: ticket %d is %s", types.ErrInvalidState, ticketID, ticket.Status)
}

// Expire retires confirmed tickets of events that have passed. Returns the
// number of tickets transitioned.
func (l *Ledger) Expire(ctx context.Context, before time.Time) (int64, error) {
	res := l.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("status = ? AND event_id IN (?)",
			types.TICKET_CONFIRMED,
			l.db.Model(&models.Event{}).Select("id").Where("date < ?", before),
		).
		UpdateColumn("status", types.TICKET_EXPIRED)
	return res.RowsAffected, res.Error
}

func (l *Ledger) Cancel(ctx context.Context, ticketID uint) error {
	res := l.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND status IN ?", ticketID, []types.TicketStatus{types.TICKET_PENDING, types.TICKET_CONFIRMED}).
		UpdateColumn("status", types.TICKET_CANCELED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: ticket %d cannot be cancelled", types.ErrInvalidState, ticketID)
	}
	return nil
}
