package review

import (
	"context"
	"time"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/lifecycle"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListPublicFor(ctx context.Context, userID string, limit, offset int) ([]domain.Review, error)
	Summary(ctx context.Context, userID string) (domain.RatingSummary, error)
	SetResponse(ctx context.Context, id, response string, at time.Time) (bool, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

type PerformerReader interface {
	GetByID(ctx context.Context, id string) (*domain.PerformerProfile, error)
}

type PartyResolver interface {
	Parties(ctx context.Context, b *domain.Booking) (lifecycle.Parties, *domain.PerformerProfile, error)
}

type EffectDispatcher interface {
	Dispatch(ctx context.Context, effects []domain.Effect) int
}
