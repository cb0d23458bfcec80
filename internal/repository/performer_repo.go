package repository

import (
	"context"

	"ignitegigs/internal/domain"

	"gorm.io/gorm"
)

type PerformerRepository struct {
	db *gorm.DB
}

func NewPerformerRepository(db *gorm.DB) *PerformerRepository {
	return &PerformerRepository{db: db}
}

func (r *PerformerRepository) Create(ctx context.Context, p *domain.PerformerProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PerformerRepository) GetByID(ctx context.Context, id string) (*domain.PerformerProfile, error) {
	var p domain.PerformerProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err, "Performer not found")
	}
	return &p, nil
}

func (r *PerformerRepository) GetByUserID(ctx context.Context, userID string) (*domain.PerformerProfile, error) {
	var p domain.PerformerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, notFound(err, "Performer not found")
	}
	return &p, nil
}

// MarkOnboarded flags the profile owning a connected account as able to
// receive payouts. It returns the number of profiles changed.
func (r *PerformerRepository) MarkOnboarded(ctx context.Context, accountID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.PerformerProfile{}).
		Where("stripe_account_id = ? AND stripe_onboarding_complete = ?", accountID, false).
		Update("stripe_onboarding_complete", true)
	return res.RowsAffected, res.Error
}
