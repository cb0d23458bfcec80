// Package booking exposes the booking lifecycle to HTTP callers: requests,
// responses, cancellation and the message thread of a booking.
package booking

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

const (
	defaultPageSize = 20
	maxPageSize     = 100
	messagePageSize = 200
)

type Service struct {
	bookings  BookingRepository
	messages  MessageRepository
	directory *Directory
	effects   EffectDispatcher
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(
	bookings BookingRepository,
	performers PerformerRepository,
	users UserRepository,
	messages MessageRepository,
	effects EffectDispatcher,
	log zerolog.Logger,
) *Service {
	return &Service{
		bookings:  bookings,
		messages:  messages,
		directory: NewDirectory(users, performers),
		effects:   effects,
		log:       log.With().Str("component", "booking").Logger(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *Service) CreateBooking(ctx context.Context, clientID string, req CreateBookingRequest) (*domain.Booking, error) {
	facts, err := req.Facts()
	if err != nil {
		return nil, err
	}

	performer, err := s.directory.performers.GetByID(ctx, req.PerformerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Performer not found")
		}
		return nil, err
	}
	parties, err := s.directory.ForPerformer(ctx, clientID, performer)
	if err != nil {
		return nil, err
	}

	b, effects, err := lifecycle.NewBooking(s.newID(), clientID, performer, parties, facts, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.BookingTransitions.WithLabelValues("create", string(b.Status)).Inc()
	logging.Ctx(ctx, s.log).Info().Str("booking_id", b.ID).Str("performer_id", b.PerformerID).Int64("quoted_price", b.QuotedPrice).Msg("booking requested")
	s.effects.Dispatch(ctx, effects)
	return b, nil
}

func (s *Service) AcceptBooking(ctx context.Context, actorID, bookingID string, agreedPrice *int64) (*domain.Booking, error) {
	return s.transition(ctx, "accept", bookingID, func(b *domain.Booking, p lifecycle.Parties, now time.Time) (lifecycle.Plan, error) {
		return lifecycle.Accept(actorID, b, p, agreedPrice, now)
	})
}

func (s *Service) DeclineBooking(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error) {
	return s.transition(ctx, "decline", bookingID, func(b *domain.Booking, p lifecycle.Parties, now time.Time) (lifecycle.Plan, error) {
		return lifecycle.Decline(actorID, b, p, reason, now)
	})
}

func (s *Service) CancelBooking(ctx context.Context, actorID, bookingID, reason string) (*domain.Booking, error) {
	return s.transition(ctx, "cancel", bookingID, func(b *domain.Booking, p lifecycle.Parties, now time.Time) (lifecycle.Plan, error) {
		return lifecycle.Cancel(actorID, b, p, reason, now)
	})
}

type planFunc func(b *domain.Booking, p lifecycle.Parties, now time.Time) (lifecycle.Plan, error)

// transition loads the booking, asks the lifecycle for a plan and applies it
// as a conditional write. Losing a race surfaces as InvalidTransition with the
// state the winner left behind.
func (s *Service) transition(ctx context.Context, op, bookingID string, plan planFunc) (*domain.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	parties, _, err := s.directory.ForBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	p, err := plan(b, parties, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, op, b.ID, p); err != nil {
		return nil, err
	}
	return s.load(ctx, bookingID)
}

// Apply writes p and, when the write lands, runs its effects.
func (s *Service) Apply(ctx context.Context, op, bookingID string, p lifecycle.Plan) error {
	ok, err := s.bookings.UpdateIf(ctx, bookingID, p.Expect, p.Updates)
	if err != nil {
		return fmt.Errorf("%s booking: %w", op, err)
	}
	if !ok {
		current, err := s.load(ctx, bookingID)
		if err != nil {
			return err
		}
		logging.Ctx(ctx, s.log).Info().Str("booking_id", bookingID).Str("op", op).Str("status", string(current.Status)).Msg("conditional update lost")
		return domain.InvalidTransition(fmt.Sprintf("This booking was updated by someone else and is now %s", current.Status))
	}

	metrics.BookingTransitions.WithLabelValues(op, string(p.To)).Inc()
	logging.Ctx(ctx, s.log).Info().Str("booking_id", bookingID).Str("op", op).Str("to", string(p.To)).Msg("booking updated")
	s.effects.Dispatch(ctx, p.Effects)
	return nil
}

// GetBooking returns the booking to its client, its performer or an admin.
func (s *Service) GetBooking(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || b.ClientID == actor.UserID {
		return b, nil
	}
	parties, _, err := s.directory.ForBooking(ctx, b)
	if err != nil {
		return nil, err
	}
	if !parties.IsPerformer(actor.UserID) {
		return nil, domain.Unauthorized()
	}
	return b, nil
}

func (s *Service) ListBookings(ctx context.Context, userID string, view View, limit, offset int) ([]domain.Booking, error) {
	limit, offset = page(limit, offset)
	switch view {
	case ViewPerformer:
		performer, err := s.directory.performers.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NotFound("You do not have a performer profile")
			}
			return nil, err
		}
		return s.bookings.ListForPerformer(ctx, performer.ID, limit, offset)
	default:
		return s.bookings.ListForClient(ctx, userID, limit, offset)
	}
}

func (s *Service) SendMessage(ctx context.Context, senderID, bookingID, content string) (*domain.Message, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	parties, _, err := s.directory.ForBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	m, effects, err := lifecycle.NewMessage(s.newID(), senderID, b, parties, content, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	s.effects.Dispatch(ctx, effects)
	return m, nil
}

func (s *Service) ListMessages(ctx context.Context, actor domain.Actor, bookingID string) ([]domain.Message, error) {
	if _, err := s.GetBooking(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return s.messages.ListForBooking(ctx, bookingID, messagePageSize)
}

// Parties exposes the party lookup to the payment and dispute services.
func (s *Service) Parties(ctx context.Context, b *domain.Booking) (lifecycle.Parties, *domain.PerformerProfile, error) {
	return s.directory.ForBooking(ctx, b)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Booking not found")
		}
		return nil, err
	}
	return b, nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
