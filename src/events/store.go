package events

import (
	"context"
	"errors"
	"etix/src/models"
	"etix/src/types"
	"fmt"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %d", types.ErrNotFound, id)
		}
		return nil, err
	}
	return &event, nil
}

func (s *Store) ListPublished(ctx context.Context) ([]models.Event, error) {
	var list []models.Event
	err := s.db.WithContext(ctx).
		Where("status = ?", types.EVENT_PUBLISHED).
		Order("date ASC").
		Find(&list).
		Error
	return list, err
}

// CompletePast flips published events whose date has passed to completed.
func (s *Store) CompletePast(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("status = ? AND date < NOW()", types.EVENT_PUBLISHED).
		UpdateColumn("status", types.EVENT_COMPLETED)
	return res.RowsAffected, res.Error
}
