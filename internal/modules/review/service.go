package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	maxContentLength = 2000
	defaultPageSize  = 20
	maxPageSize      = 100
)

type Service struct {
	reviews    ReviewRepository
	bookings   BookingReader
	performers PerformerReader
	parties    PartyResolver
	effects    EffectDispatcher
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(
	reviews ReviewRepository,
	bookings BookingReader,
	performers PerformerReader,
	parties PartyResolver,
	effects EffectDispatcher,
	log zerolog.Logger,
) *Service {
	return &Service{
		reviews:    reviews,
		bookings:   bookings,
		performers: performers,
		parties:    parties,
		effects:    effects,
		log:        log.With().Str("component", "review").Logger(),
		now:        time.Now,
	}
}

// Create records actorID's review of the other party on a delivered
// booking. Each party reviews a booking at most once.
func (s *Service) Create(ctx context.Context, actorID, bookingID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	parties, _, err := s.parties.Parties(ctx, b)
	if err != nil {
		return nil, err
	}
	reviewee := parties.Other(actorID)
	if reviewee == "" {
		return nil, domain.Unauthorized()
	}
	if !b.Reviewable() {
		return nil, domain.InvalidTransition("Reviews open once the booking is completed")
	}

	reviewerType, reviewerName := domain.ReviewerClient, parties.ClientName
	if parties.IsPerformer(actorID) {
		reviewerType, reviewerName = domain.ReviewerPerformer, parties.PerformerName
	}

	rv := &domain.Review{
		ID:                    uuid.NewString(),
		BookingID:             b.ID,
		ReviewerID:            actorID,
		RevieweeID:            reviewee,
		ReviewerType:          reviewerType,
		Rating:                req.Rating,
		Content:               strings.TrimSpace(req.Content),
		ProfessionalismRating: req.ProfessionalismRating,
		CommunicationRating:   req.CommunicationRating,
		ValueRating:           req.ValueRating,
		IsPublic:              !req.Private,
		CreatedAt:             s.now(),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}

	logging.Ctx(ctx, s.log).Info().Str("booking_id", b.ID).Str("review_id", rv.ID).Int("rating", rv.Rating).Msg("review created")
	if reviewerName == "" {
		reviewerName = "Someone"
	}
	s.effects.Dispatch(ctx, []domain.Effect{domain.Notify(reviewee, domain.NotifReview, "New Review",
		fmt.Sprintf("%s left you a %d-star review", reviewerName, rv.Rating),
		"/bookings/"+b.ID)})
	return rv, nil
}

// ListForPerformer returns the public reviews of a performer profile and
// their aggregate rating.
func (s *Service) ListForPerformer(ctx context.Context, performerID string, limit, offset int) (*PerformerReviews, error) {
	p, err := s.performers.GetByID(ctx, performerID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.reviews.ListPublicFor(ctx, p.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	summary, err := s.reviews.Summary(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &PerformerReviews{Summary: summary, Reviews: list}, nil
}

// Respond lets the reviewee answer a review once.
func (s *Service) Respond(ctx context.Context, actorID, reviewID, text string) (*domain.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validation("Response cannot be empty")
	}
	if len(text) > maxContentLength {
		return nil, domain.Validation(fmt.Sprintf("Response must be at most %d characters", maxContentLength))
	}

	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.RevieweeID != actorID {
		return nil, domain.Unauthorized()
	}

	now := s.now()
	ok, err := s.reviews.SetResponse(ctx, rv.ID, text, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.InvalidTransition("You have already responded to this review")
	}
	rv.Response = &text
	rv.RespondedAt = &now
	return rv, nil
}

func validate(req CreateReviewRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return domain.Validation("Rating must be between 1 and 5")
	}
	for _, r := range []*int{req.ProfessionalismRating, req.CommunicationRating, req.ValueRating} {
		if r != nil && (*r < 1 || *r > 5) {
			return domain.Validation("Detailed ratings must be between 1 and 5")
		}
	}
	if len(strings.TrimSpace(req.Content)) > maxContentLength {
		return domain.Validation(fmt.Sprintf("Review must be at most %d characters", maxContentLength))
	}
	return nil
}
