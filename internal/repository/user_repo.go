package repository

import (
	"context"
	"strings"

	"ignitegigs/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores u; a taken email surfaces as a validation error.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Validation("An account with this email already exists")
		}
		return err
	}
	return nil
}

// CreateWithProfile stores a performer account and its profile atomically.
func (r *UserRepository) CreateWithProfile(ctx context.Context, u *domain.User, p *domain.PerformerProfile) error {
	u.Email = normalizeEmail(u.Email)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.Validation("An account with this email already exists")
			}
			return err
		}
		p.UserID = u.ID
		return tx.Create(p).Error
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", normalizeEmail(email)).Count(&n).Error
	return n > 0, err
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
