package domain

import "time"

type ReviewerType string

const (
	ReviewerClient    ReviewerType = "client"
	ReviewerPerformer ReviewerType = "performer"
)

// Review is left by one party about the other once a booking has been
// delivered. Ratings are 1 to 5; the detailed ones are optional.
type Review struct {
	ID           string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BookingID    string       `json:"booking_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_booking_reviewer"`
	ReviewerID   string       `json:"reviewer_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_booking_reviewer"`
	RevieweeID   string       `json:"reviewee_id" gorm:"type:varchar(36);not null;index"`
	ReviewerType ReviewerType `json:"reviewer_type" gorm:"type:varchar(16);not null"`

	Rating                int    `json:"rating" gorm:"not null"`
	Content               string `json:"content,omitempty" gorm:"type:text"`
	ProfessionalismRating *int   `json:"professionalism_rating,omitempty"`
	CommunicationRating   *int   `json:"communication_rating,omitempty"`
	ValueRating           *int   `json:"value_rating,omitempty"`
	IsPublic              bool   `json:"is_public" gorm:"not null"`

	Response    *string    `json:"response,omitempty" gorm:"type:text"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

// Reviewable reports whether the event behind b has been delivered. A
// completed booking that was disputed afterwards keeps its completion stamp.
func (b *Booking) Reviewable() bool {
	return b.Status == BookingCompleted || (b.Status == BookingDisputed && b.CompletedAt != nil)
}

// RatingSummary aggregates the public reviews of one user.
type RatingSummary struct {
	Count   int64   `json:"total_reviews"`
	Average float64 `json:"average_rating"`
}
