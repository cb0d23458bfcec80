package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/pricing"
)

// NewBooking validates a client's request and builds the inquiry record.
func NewBooking(id, clientID string, performer *domain.PerformerProfile, parties Parties, facts domain.EventFacts, now time.Time) (*domain.Booking, []domain.Effect, error) {
	if performer == nil || !performer.IsActive {
		return nil, nil, domain.NotFound("Performer not found")
	}
	if clientID == "" || clientID == parties.PerformerUserID {
		return nil, nil, domain.Unauthorized()
	}
	if facts.Date.IsZero() {
		return nil, nil, domain.Validation("Event date is required")
	}
	if dayOf(facts.Date).Before(dayOf(now)) {
		return nil, nil, domain.Validation("Event date must be today or later")
	}
	location := strings.TrimSpace(facts.Location)
	if location == "" {
		return nil, nil, domain.Validation("Event location is required")
	}
	if facts.DurationHours != nil && *facts.DurationHours <= 0 {
		return nil, nil, domain.Validation("Event duration must be at least one hour")
	}
	if facts.GuestCount != nil && *facts.GuestCount < 0 {
		return nil, nil, domain.Validation("Guest count cannot be negative")
	}

	quoted := pricing.Quote(pricing.Rates{
		Hourly: performer.HourlyRate,
		Event:  performer.EventRate,
		Min:    performer.MinRate,
	}, facts.DurationHours)

	b := &domain.Booking{
		ID:            id,
		PerformerID:   performer.ID,
		ClientID:      clientID,
		Status:        domain.BookingInquiry,
		EventDate:     dayOf(facts.Date),
		EventTime:     strings.TrimSpace(facts.Time),
		EventEndTime:  strings.TrimSpace(facts.EndTime),
		DurationHours: facts.DurationHours,
		Location:      location,
		EventType:     strings.TrimSpace(facts.Type),
		Details:       strings.TrimSpace(facts.Details),
		GuestCount:    facts.GuestCount,
		QuotedPrice:   quoted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	effects := []domain.Effect{
		domain.SendEmail(domain.EmailNewBookingRequest, parties.PerformerUserID, map[string]any{
			"booking_id":     b.ID,
			"client_name":    parties.ClientName,
			"performer_name": parties.PerformerName,
			"event_date":     formatDate(b.EventDate),
			"event_time":     b.EventTime,
			"event_location": b.Location,
			"event_type":     b.EventType,
			"event_details":  b.Details,
			"quoted_price":   FormatPence(quoted),
			"link":           bookingLink(b.ID),
		}),
		domain.Notify(parties.PerformerUserID, domain.NotifBookingRequest, "New Booking Request",
			fmt.Sprintf("%s wants to book you for %s", nameOr(parties.ClientName, "A client"), formatDate(b.EventDate)),
			bookingLink(b.ID)),
	}
	return b, effects, nil
}

// Accept moves an inquiry or pending booking to accepted. A nil agreedPrice
// keeps the quote.
func Accept(actorID string, b *domain.Booking, parties Parties, agreedPrice *int64, now time.Time) (Plan, error) {
	if err := checkRespond(actorID, b, parties, "accepted"); err != nil {
		return Plan{}, err
	}
	price := b.QuotedPrice
	if agreedPrice != nil {
		if *agreedPrice <= 0 {
			return Plan{}, domain.Validation("Agreed price must be greater than zero")
		}
		price = *agreedPrice
	}

	return Plan{
		Expect: domain.BookingCondition{Statuses: domain.RespondableStatuses, PerformerID: b.PerformerID},
		To:     domain.BookingAccepted,
		Updates: map[string]any{
			"status":       string(domain.BookingAccepted),
			"agreed_price": price,
			"responded_at": now,
			"updated_at":   now,
		},
		Effects: []domain.Effect{
			domain.SendEmail(domain.EmailBookingAccepted, parties.ClientID, map[string]any{
				"booking_id":     b.ID,
				"client_name":    parties.ClientName,
				"performer_name": parties.PerformerName,
				"event_date":     formatDate(b.EventDate),
				"event_location": b.Location,
				"agreed_price":   FormatPence(price),
				"link":           bookingLink(b.ID) + "/pay",
			}),
			domain.Notify(parties.ClientID, domain.NotifBookingUpdate, "Booking Accepted",
				fmt.Sprintf("%s accepted your booking for %s", nameOr(parties.PerformerName, "The performer"), formatDate(b.EventDate)),
				bookingLink(b.ID)),
		},
	}, nil
}

func Decline(actorID string, b *domain.Booking, parties Parties, reason string, now time.Time) (Plan, error) {
	if err := checkRespond(actorID, b, parties, "declined"); err != nil {
		return Plan{}, err
	}
	reason = strings.TrimSpace(reason)
	body := fmt.Sprintf("%s is unable to take your booking for %s", nameOr(parties.PerformerName, "The performer"), formatDate(b.EventDate))
	if reason != "" {
		body += ": " + reason
	}

	return Plan{
		Expect: domain.BookingCondition{Statuses: domain.RespondableStatuses, PerformerID: b.PerformerID},
		To:     domain.BookingDeclined,
		Updates: map[string]any{
			"status":         string(domain.BookingDeclined),
			"decline_reason": reason,
			"responded_at":   now,
			"updated_at":     now,
		},
		Effects: []domain.Effect{
			domain.SendEmail(domain.EmailBookingDeclined, parties.ClientID, map[string]any{
				"booking_id":     b.ID,
				"client_name":    parties.ClientName,
				"performer_name": parties.PerformerName,
				"event_date":     formatDate(b.EventDate),
				"reason":         reason,
			}),
			domain.Notify(parties.ClientID, domain.NotifBookingUpdate, "Booking Declined", body, bookingLink(b.ID)),
		},
	}, nil
}

// Cancel is available to the client from any non-terminal status.
func Cancel(actorID string, b *domain.Booking, parties Parties, reason string, now time.Time) (Plan, error) {
	if !parties.IsClient(actorID) || b.ClientID != actorID {
		return Plan{}, domain.Unauthorized()
	}
	if !contains(domain.CancellableStatuses, b.Status) {
		return Plan{}, domain.InvalidTransition(fmt.Sprintf("A %s booking cannot be cancelled", b.Status))
	}
	reason = strings.TrimSpace(reason)

	return Plan{
		Expect: domain.BookingCondition{Statuses: domain.CancellableStatuses, ClientID: b.ClientID},
		To:     domain.BookingCancelled,
		Updates: map[string]any{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": reason,
			"updated_at":          now,
		},
		Effects: []domain.Effect{
			domain.SendEmail(domain.EmailBookingCancelled, parties.PerformerUserID, map[string]any{
				"booking_id":     b.ID,
				"client_name":    parties.ClientName,
				"performer_name": parties.PerformerName,
				"event_date":     formatDate(b.EventDate),
				"reason":         reason,
			}),
			domain.Notify(parties.PerformerUserID, domain.NotifBookingUpdate, "Booking Cancelled",
				fmt.Sprintf("%s cancelled the booking for %s", nameOr(parties.ClientName, "The client"), formatDate(b.EventDate)),
				bookingLink(b.ID)),
		},
	}, nil
}

func checkRespond(actorID string, b *domain.Booking, parties Parties, verb string) error {
	if !parties.IsPerformer(actorID) {
		return domain.Unauthorized()
	}
	if !contains(domain.RespondableStatuses, b.Status) {
		return domain.InvalidTransition(fmt.Sprintf("Only new requests can be %s; this booking is %s", verb, b.Status))
	}
	return nil
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
