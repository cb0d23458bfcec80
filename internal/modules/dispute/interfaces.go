package dispute

import (
	"context"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/lifecycle"
)

type DisputeRepository interface {
	Exists(ctx context.Context, bookingID, raisedBy string) (bool, error)
	CreateAndMark(ctx context.Context, d *domain.Dispute, bookingUpdates map[string]any) error
	GetByID(ctx context.Context, id string) (*domain.Dispute, error)
	List(ctx context.Context, status domain.DisputeStatus, limit, offset int) ([]domain.Dispute, error)
	ListForBooking(ctx context.Context, bookingID string) ([]domain.Dispute, error)
	UpdateIf(ctx context.Context, d *domain.Dispute, from []domain.DisputeStatus, updates, bookingUpdates map[string]any) (bool, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

type PartyResolver interface {
	Parties(ctx context.Context, b *domain.Booking) (lifecycle.Parties, *domain.PerformerProfile, error)
}

type EffectDispatcher interface {
	Dispatch(ctx context.Context, effects []domain.Effect) int
}
