package booking

import (
	"context"
	"errors"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/lifecycle"
)

// Directory resolves the people behind a booking.
type Directory struct {
	users      UserRepository
	performers PerformerRepository
}

func NewDirectory(users UserRepository, performers PerformerRepository) *Directory {
	return &Directory{users: users, performers: performers}
}

// ForBooking loads the parties of b together with the performer profile.
func (d *Directory) ForBooking(ctx context.Context, b *domain.Booking) (lifecycle.Parties, *domain.PerformerProfile, error) {
	performer, err := d.performers.GetByID(ctx, b.PerformerID)
	if err != nil {
		return lifecycle.Parties{}, nil, err
	}
	p, err := d.ForPerformer(ctx, b.ClientID, performer)
	return p, performer, err
}

func (d *Directory) ForPerformer(ctx context.Context, clientID string, performer *domain.PerformerProfile) (lifecycle.Parties, error) {
	p := lifecycle.Parties{
		ClientID:        clientID,
		PerformerUserID: performer.UserID,
		PerformerName:   performer.StageName,
	}

	owner, err := d.users.GetByID(ctx, performer.UserID)
	switch {
	case err == nil:
		p.PerformerName = performer.DisplayName(owner.FullName)
	case !errors.Is(err, domain.ErrNotFound):
		return lifecycle.Parties{}, err
	}

	client, err := d.users.GetByID(ctx, clientID)
	switch {
	case err == nil:
		p.ClientName = client.FullName
	case !errors.Is(err, domain.ErrNotFound):
		return lifecycle.Parties{}, err
	}
	return p, nil
}
