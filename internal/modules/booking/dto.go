package booking

import (
	"time"

	"ignitegigs/internal/domain"
)

const dateLayout = "2006-01-02"

type CreateBookingRequest struct {
	PerformerID   string `json:"performer_id" binding:"required"`
	EventDate     string `json:"event_date" binding:"required"`
	EventTime     string `json:"event_time"`
	EventEndTime  string `json:"event_end_time"`
	DurationHours *int   `json:"event_duration_hours" binding:"omitempty,min=1,max=48"`
	Location      string `json:"event_location" binding:"required,max=500"`
	EventType     string `json:"event_type" binding:"max=64"`
	Details       string `json:"event_details" binding:"max=5000"`
	GuestCount    *int   `json:"guest_count" binding:"omitempty,min=0"`
}

// Facts converts the request into event facts. The date is a calendar day
// in YYYY-MM-DD form.
func (r CreateBookingRequest) Facts() (domain.EventFacts, error) {
	date, err := time.Parse(dateLayout, r.EventDate)
	if err != nil {
		return domain.EventFacts{}, domain.Validation("Event date must be in YYYY-MM-DD format")
	}
	return domain.EventFacts{
		Date:          date,
		Time:          r.EventTime,
		EndTime:       r.EventEndTime,
		DurationHours: r.DurationHours,
		Location:      r.Location,
		Type:          r.EventType,
		Details:       r.Details,
		GuestCount:    r.GuestCount,
	}, nil
}

type AcceptBookingRequest struct {
	AgreedPrice *int64 `json:"agreed_price_pence"`
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// View selects which side of the user's bookings to list.
type View string

const (
	ViewClient    View = "client"
	ViewPerformer View = "performer"
)
