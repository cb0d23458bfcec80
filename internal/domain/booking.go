package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingInquiry   BookingStatus = "inquiry"
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingDeclined  BookingStatus = "declined"
	BookingDisputed  BookingStatus = "disputed"
)

// bookingTransitions is the lifecycle table. Of the terminal states only
// completed can still move, and only into disputed. accepted -> completed
// covers a final payment landing before the deposit confirmation.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingInquiry:   {BookingPending, BookingAccepted, BookingDeclined, BookingCancelled, BookingDisputed},
	BookingPending:   {BookingAccepted, BookingDeclined, BookingCancelled, BookingDisputed},
	BookingAccepted:  {BookingConfirmed, BookingCompleted, BookingCancelled, BookingDisputed},
	BookingConfirmed: {BookingCompleted, BookingCancelled, BookingDisputed},
	BookingCompleted: {BookingDisputed},
	BookingCancelled: {},
	BookingDeclined:  {},
	BookingDisputed:  {BookingDisputed},
}

// IsValid reports whether s is one of the known lifecycle states.
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle table allows s -> target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further payment-affecting transition can
// leave s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingDeclined
}

func (s BookingStatus) String() string { return string(s) }

func ParseBookingStatus(v string) (BookingStatus, error) {
	s := BookingStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", v)
	}
	return s, nil
}

// RespondableStatuses are the states a performer can accept or decline from.
var RespondableStatuses = []BookingStatus{BookingInquiry, BookingPending}

// CancellableStatuses are every non-terminal state.
var CancellableStatuses = []BookingStatus{
	BookingInquiry, BookingPending, BookingAccepted, BookingConfirmed, BookingDisputed,
}

// DisputableStatuses are the states a dispute can be raised from.
var DisputableStatuses = []BookingStatus{
	BookingInquiry, BookingPending, BookingAccepted, BookingConfirmed, BookingCompleted, BookingDisputed,
}

type PaymentType string

const (
	PaymentDeposit PaymentType = "deposit"
	PaymentFinal   PaymentType = "final"
)

func (t PaymentType) IsValid() bool { return t == PaymentDeposit || t == PaymentFinal }

// Booking is stored in minor currency units (pence) throughout.
type Booking struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PerformerID string        `json:"performer_id" gorm:"type:varchar(36);not null;index"`
	ClientID    string        `json:"client_id" gorm:"type:varchar(36);not null;index"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(20);not null;index"`

	EventDate     time.Time `json:"event_date" gorm:"not null"`
	EventTime     string    `json:"event_time,omitempty" gorm:"type:varchar(8)"`
	EventEndTime  string    `json:"event_end_time,omitempty" gorm:"type:varchar(8)"`
	DurationHours *int      `json:"event_duration_hours,omitempty"`
	Location      string    `json:"event_location" gorm:"type:text;not null"`
	EventType     string    `json:"event_type,omitempty" gorm:"type:varchar(64)"`
	Details       string    `json:"event_details,omitempty" gorm:"type:text"`
	GuestCount    *int      `json:"guest_count,omitempty"`

	QuotedPrice     int64  `json:"quoted_price_pence" gorm:"not null"`
	AgreedPrice     *int64 `json:"agreed_price_pence,omitempty"`
	DepositAmount   *int64 `json:"deposit_pence,omitempty"`
	PlatformFee     *int64 `json:"platform_fee_pence,omitempty"`
	PerformerPayout *int64 `json:"performer_payout_pence,omitempty"`

	DepositPaid     bool       `json:"deposit_paid" gorm:"not null;default:false"`
	DepositPaidAt   *time.Time `json:"deposit_paid_at,omitempty"`
	FinalPaid       bool       `json:"final_paid" gorm:"not null;default:false"`
	FinalPaidAt     *time.Time `json:"final_paid_at,omitempty"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty" gorm:"type:varchar(255)"`

	RefundAmount    *int64 `json:"refund_amount_pence,omitempty"`
	RefundProcessed bool   `json:"refund_processed" gorm:"not null;default:false"`

	CancellationReason string `json:"cancellation_reason,omitempty" gorm:"type:text"`
	DeclineReason      string `json:"decline_reason,omitempty" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Price returns the agreed price, falling back to the quote.
func (b *Booking) Price() int64 {
	if b.AgreedPrice != nil && *b.AgreedPrice > 0 {
		return *b.AgreedPrice
	}
	return b.QuotedPrice
}

// EventFacts are the client-supplied details of a booking request.
type EventFacts struct {
	Date          time.Time
	Time          string
	EndTime       string
	DurationHours *int
	Location      string
	Type          string
	Details       string
	GuestCount    *int
}

// BookingCondition narrows a conditional update. Zero fields do not filter.
type BookingCondition struct {
	Statuses    []BookingStatus
	PerformerID string
	ClientID    string
	// Unset names a boolean column that must still be false.
	Unset string
}
