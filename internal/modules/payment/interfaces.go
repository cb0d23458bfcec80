package payment

import (
	"context"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/lifecycle"
)

type bookingStore interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateIf(ctx context.Context, id string, cond domain.BookingCondition, updates map[string]any) (bool, error)
}

type refundStore interface {
	ListPendingRefunds(ctx context.Context, limit int) ([]domain.Booking, error)
	MarkRefundProcessed(ctx context.Context, id string) (bool, error)
}

type partyResolver interface {
	Parties(ctx context.Context, b *domain.Booking) (lifecycle.Parties, *domain.PerformerProfile, error)
}

type performerOnboarder interface {
	MarkOnboarded(ctx context.Context, accountID string) (int64, error)
}

type effectDispatcher interface {
	Dispatch(ctx context.Context, effects []domain.Effect) int
}
