package repository

import (
	"context"
	"time"

	"ignitegigs/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create stores rv; a second review of the same booking by the same reviewer
// hits the unique index and comes back as a validation error.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Create(rv).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Validation("You have already reviewed this booking")
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rv).Error; err != nil {
		return nil, notFound(err, "Review not found")
	}
	return &rv, nil
}

// ListPublicFor returns the public reviews about userID, newest first.
func (r *ReviewRepository) ListPublicFor(ctx context.Context, userID string, limit, offset int) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.WithContext(ctx).
		Where("reviewee_id = ? AND is_public = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *ReviewRepository) Summary(ctx context.Context, userID string) (domain.RatingSummary, error) {
	var row struct {
		Count   int64
		Average *float64
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS average").
		Where("reviewee_id = ? AND is_public = ?", userID, true).
		Scan(&row).Error
	if err != nil {
		return domain.RatingSummary{}, err
	}
	s := domain.RatingSummary{Count: row.Count}
	if row.Average != nil {
		s.Average = *row.Average
	}
	return s, nil
}

// SetResponse records the reviewee's reply. Only the first reply is kept.
func (r *ReviewRepository) SetResponse(ctx context.Context, id, response string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("id = ? AND response IS NULL", id).
		Updates(map[string]any{"response": response, "responded_at": at})
	return res.RowsAffected > 0, res.Error
}
