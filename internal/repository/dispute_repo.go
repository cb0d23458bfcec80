package repository

import (
	"context"

	"ignitegigs/internal/domain"

	"gorm.io/gorm"
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Exists(ctx context.Context, bookingID, raisedBy string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Dispute{}).
		Where("booking_id = ? AND raised_by = ?", bookingID, raisedBy).
		Count(&n).Error
	return n > 0, err
}

// CreateAndMark inserts d and writes bookingUpdates to its booking in one
// transaction. The (booking_id, raised_by) unique index turns a racing second
// insert into ErrDuplicateDispute. A booking that was cancelled or declined
// after the caller read it rolls the insert back with ErrInvalidTransition.
func (r *DisputeRepository) CreateAndMark(ctx context.Context, d *domain.Dispute, bookingUpdates map[string]any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			if isUniqueViolation(err) {
				return &domain.Error{Kind: domain.ErrDuplicateDispute, Message: "You have already raised a dispute for this booking"}
			}
			return err
		}
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND status IN ?", d.BookingID, statusStrings(domain.DisputableStatuses)).
			Updates(bookingUpdates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		var n int64
		if err := tx.Model(&domain.Booking{}).Where("id = ?", d.BookingID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound("Booking not found")
		}
		return domain.InvalidTransition("This booking can no longer be disputed")
	})
}

func (r *DisputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	var d domain.Dispute
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, notFound(err, "Dispute not found")
	}
	return &d, nil
}

// List returns disputes newest first, optionally filtered by status.
func (r *DisputeRepository) List(ctx context.Context, status domain.DisputeStatus, limit, offset int) ([]domain.Dispute, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var out []domain.Dispute
	return out, q.Find(&out).Error
}

func (r *DisputeRepository) ListForBooking(ctx context.Context, bookingID string) ([]domain.Dispute, error) {
	var out []domain.Dispute
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at ASC").Find(&out).Error
	return out, err
}

// UpdateIf writes updates while the dispute is still in one of from, and
// bookingUpdates to its booking when given, atomically.
func (r *DisputeRepository) UpdateIf(ctx context.Context, d *domain.Dispute, from []domain.DisputeStatus, updates, bookingUpdates map[string]any) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.Dispute{}).Where("id = ?", d.ID)
		if len(from) > 0 {
			ss := make([]string, len(from))
			for i, s := range from {
				ss[i] = string(s)
			}
			q = q.Where("status IN ?", ss)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if len(bookingUpdates) > 0 {
			if err := tx.Model(&domain.Booking{}).Where("id = ?", d.BookingID).Updates(bookingUpdates).Error; err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	return changed, err
}
