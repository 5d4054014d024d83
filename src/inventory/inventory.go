package inventory

import (
	"context"
	"etix/src/models"
	"etix/src/types"
	"fmt"

	"gorm.io/gorm"
)

// Ledger mutates an event's available ticket count with single guarded
// UPDATE statements. A read-then-write here would be a correctness bug:
// the guard in the WHERE clause is what keeps 0 <= available <= total
// under concurrent purchases.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Available(ctx context.Context, eventID uint) (uint, error) {
	var event models.Event
	if err := l.db.WithContext(ctx).
		Model(&models.Event{}).
		Select("id", "available_tickets").
		Where("id = ?", eventID).
		First(&event).
		Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("%w: event %d", types.ErrNotFound, eventID)
		}
		return 0, err
	}
	return event.AvailableTickets, nil
}

func (l *Ledger) Decrement(ctx context.Context, eventID uint, n uint) error {
	res := l.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND available_tickets >= ?", eventID, n).
		UpdateColumn("available_tickets", gorm.Expr("available_tickets - ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: event %d has fewer than %d tickets left", types.ErrInsufficientInventory, eventID, n)
	}
	return nil
}

func (l *Ledger) Release(ctx context.Context, eventID uint, n uint) error {
	res := l.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND available_tickets + ? <= total_tickets", eventID, n).
		UpdateColumn("available_tickets", gorm.Expr("available_tickets + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: releasing %d tickets for event %d would exceed total", types.ErrInvalidState, n, eventID)
	}
	return nil
}
