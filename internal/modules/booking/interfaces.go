package booking

import (
	"context"

	"ignitegigs/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateIf(ctx context.Context, id string, cond domain.BookingCondition, updates map[string]any) (bool, error)
	ListForClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Booking, error)
	ListForPerformer(ctx context.Context, performerID string, limit, offset int) ([]domain.Booking, error)
}

type PerformerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.PerformerProfile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.PerformerProfile, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListForBooking(ctx context.Context, bookingID string, limit int) ([]domain.Message, error)
}

// EffectDispatcher runs side effects after a change has been stored.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, effects []domain.Effect) int
}
