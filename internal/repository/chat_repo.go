package repository

import (
	"context"

	"ignitegigs/internal/domain"

	"gorm.io/gorm"
)

// MessageRepository stores the per-booking conversation.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListForBooking returns messages oldest first.
func (r *MessageRepository) ListForBooking(ctx context.Context, bookingID string, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
