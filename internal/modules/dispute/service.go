// Package dispute lets either party of a booking raise a dispute and lets
// admins review and resolve it.
package dispute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/lifecycle"
	"ignitegigs/internal/logging"
	"ignitegigs/internal/metrics"
)

var openStatuses = []domain.DisputeStatus{domain.DisputeOpen, domain.DisputeUnderReview}

type Service struct {
	disputes DisputeRepository
	bookings BookingReader
	parties  PartyResolver
	effects  EffectDispatcher
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(disputes DisputeRepository, bookings BookingReader, parties PartyResolver, effects EffectDispatcher, log zerolog.Logger) *Service {
	return &Service{
		disputes: disputes,
		bookings: bookings,
		parties:  parties,
		effects:  effects,
		log:      log.With().Str("component", "dispute").Logger(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Raise files a dispute from actorID against the other party and marks the
// booking disputed, whatever its status was.
func (s *Service) Raise(ctx context.Context, actorID, bookingID string, req RaiseDisputeRequest) (*domain.Dispute, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Booking not found")
		}
		return nil, err
	}
	parties, _, err := s.parties.Parties(ctx, b)
	if err != nil {
		return nil, err
	}
	if parties.Other(actorID) == "" {
		return nil, domain.Unauthorized()
	}

	exists, err := s.disputes.Exists(ctx, b.ID, actorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.Error{Kind: domain.ErrDuplicateDispute, Message: "You have already raised a dispute for this booking"}
	}

	d, plan, err := lifecycle.RaiseDispute(s.newID(), actorID, b, parties, lifecycle.DisputeInput{
		Reason:      req.Reason,
		Description: req.Description,
		Evidence:    req.Evidence,
	}, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.disputes.CreateAndMark(ctx, d, plan.Updates); err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues("dispute", string(plan.To)).Inc()
	logging.Ctx(ctx, s.log).Info().Str("dispute_id", d.ID).Str("booking_id", b.ID).Str("reason", string(d.Reason)).Msg("dispute raised")
	s.effects.Dispatch(ctx, plan.Effects)
	return d, nil
}

// Get returns the dispute to either party or an admin.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Dispute, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.UserID != d.RaisedBy && actor.UserID != d.RaisedAgainst {
		return nil, domain.Unauthorized()
	}
	return d, nil
}

// ListForBooking returns every dispute on a booking, oldest first, to its
// parties or an admin.
func (s *Service) ListForBooking(ctx context.Context, actor domain.Actor, bookingID string) ([]domain.Dispute, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Booking not found")
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		parties, _, err := s.parties.Parties(ctx, b)
		if err != nil {
			return nil, err
		}
		if parties.Other(actor.UserID) == "" {
			return nil, domain.Unauthorized()
		}
	}
	return s.disputes.ListForBooking(ctx, b.ID)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]domain.Dispute, error) {
	var st domain.DisputeStatus
	if status != "" {
		parsed, err := domain.ParseDisputeStatus(status)
		if err != nil {
			return nil, domain.Validation("Unknown dispute status")
		}
		st = parsed
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.disputes.List(ctx, st, limit, offset)
}

func (s *Service) StartReview(ctx context.Context, adminID, id string) (*domain.Dispute, error) {
	return s.change(ctx, "review", adminID, id, []domain.DisputeStatus{domain.DisputeOpen}, func(d *domain.Dispute, _ *domain.Booking, now time.Time) (lifecycle.DisputeChange, error) {
		return lifecycle.StartReview(d, now)
	})
}

func (s *Service) AddNotes(ctx context.Context, adminID, id, notes string) (*domain.Dispute, error) {
	return s.change(ctx, "notes", adminID, id, nil, func(d *domain.Dispute, _ *domain.Booking, now time.Time) (lifecycle.DisputeChange, error) {
		return lifecycle.AddNotes(d, notes, now)
	})
}

func (s *Service) ResolveWithRefund(ctx context.Context, adminID, id, resolution string, refund int64) (*domain.Dispute, error) {
	return s.Resolve(ctx, adminID, id, domain.DisputeResolvedRefund, resolution, &refund)
}

func (s *Service) ResolveWithWarning(ctx context.Context, adminID, id, resolution string) (*domain.Dispute, error) {
	return s.Resolve(ctx, adminID, id, domain.DisputeResolvedWarning, resolution, nil)
}

func (s *Service) ResolveWithNoAction(ctx context.Context, adminID, id, resolution string) (*domain.Dispute, error) {
	return s.Resolve(ctx, adminID, id, domain.DisputeResolvedNoAction, resolution, nil)
}

func (s *Service) Close(ctx context.Context, adminID, id, resolution string) (*domain.Dispute, error) {
	return s.Resolve(ctx, adminID, id, domain.DisputeClosed, resolution, nil)
}

// Resolve moves an open or reviewed dispute to a final status. A refund is
// recorded on the booking as pending; the refund sweep sends it.
func (s *Service) Resolve(ctx context.Context, adminID, id string, to domain.DisputeStatus, resolution string, refund *int64) (*domain.Dispute, error) {
	return s.change(ctx, "resolve", adminID, id, openStatuses, func(d *domain.Dispute, b *domain.Booking, now time.Time) (lifecycle.DisputeChange, error) {
		return lifecycle.Resolve(adminID, d, b, to, resolution, refund, now)
	})
}

type changeFunc func(d *domain.Dispute, b *domain.Booking, now time.Time) (lifecycle.DisputeChange, error)

func (s *Service) change(ctx context.Context, op, adminID, id string, from []domain.DisputeStatus, fn changeFunc) (*domain.Dispute, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, d.BookingID)
	if err != nil {
		return nil, err
	}

	c, err := fn(d, b, s.now().UTC())
	if err != nil {
		return nil, err
	}
	ok, err := s.disputes.UpdateIf(ctx, d, from, c.Updates, c.BookingUpdates)
	if err != nil {
		return nil, fmt.Errorf("%s dispute: %w", op, err)
	}
	if !ok {
		return nil, domain.InvalidTransition("This dispute was updated by someone else; reload and try again")
	}

	logging.Ctx(ctx, s.log).Info().Str("dispute_id", d.ID).Str("op", op).Str("admin_id", adminID).Msg("dispute updated")
	s.effects.Dispatch(ctx, c.Effects)
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Dispute not found")
		}
		return nil, err
	}
	return d, nil
}
