package domain

import "time"

// Message is a chat line exchanged between the two parties of a booking.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BookingID string    `json:"booking_id" gorm:"type:varchar(36);not null;index"`
	SenderID  string    `json:"sender_id" gorm:"type:varchar(36);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
