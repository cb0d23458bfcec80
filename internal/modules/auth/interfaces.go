package auth

import (
	"context"
	"time"

	"ignitegigs/internal/domain"
)

// UserRepository is the slice of the user store auth needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	CreateWithProfile(ctx context.Context, u *domain.User, p *domain.PerformerProfile) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID, role string) (string, error)
}

// FailureGuard is the brute-force lockout half of ratelimit.Guard.
type FailureGuard interface {
	IsLockedOut(key string) time.Duration
	RecordFailure(key string)
	ClearFailures(key string)
}
