package repository

import (
	"context"

	"ignitegigs/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err, "Booking not found")
	}
	return &b, nil
}

// UpdateIf applies updates only when the row still matches cond. It reports
// whether a row was written; false means another writer got there first or
// the booking is no longer in an expected state.
func (r *BookingRepository) UpdateIf(ctx context.Context, id string, cond domain.BookingCondition, updates map[string]any) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", id)
	if len(cond.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(cond.Statuses))
	}
	if cond.PerformerID != "" {
		q = q.Where("performer_id = ?", cond.PerformerID)
	}
	if cond.ClientID != "" {
		q = q.Where("client_id = ?", cond.ClientID)
	}
	if cond.Unset != "" {
		if !isFlagColumn(cond.Unset) {
			return false, domain.Validation("unknown flag " + cond.Unset)
		}
		q = q.Where(cond.Unset+" = ?", false)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingRepository) ListForClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("event_date DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListForPerformer(ctx context.Context, performerID string, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("performer_id = ?", performerID).
		Order("event_date DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// ListPendingRefunds returns bookings with a recorded refund the gateway has
// not processed yet, oldest first.
func (r *BookingRepository) ListPendingRefunds(ctx context.Context, limit int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("refund_amount > 0 AND refund_processed = ?", false).
		Order("updated_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) MarkRefundProcessed(ctx context.Context, id string) (bool, error) {
	return r.UpdateIf(ctx, id, domain.BookingCondition{Unset: "refund_processed"}, map[string]any{
		"refund_processed": true,
	})
}

func statusStrings(in []domain.BookingStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func isFlagColumn(c string) bool {
	switch c {
	case "deposit_paid", "final_paid", "refund_processed":
		return true
	}
	return false
}
