package domain

import "time"

type NotificationType string

const (
	NotifBookingRequest NotificationType = "booking_request"
	NotifBookingUpdate  NotificationType = "booking_update"
	NotifMessage        NotificationType = "message"
	NotifReview         NotificationType = "review"
	NotifDispute        NotificationType = "dispute"
	NotifSystem         NotificationType = "system"
	NotifPayment        NotificationType = "payment"
)

type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string           `json:"user_id" gorm:"type:varchar(36);not null;index:idx_notifications_user_unread"`
	Type      NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	Title     string           `json:"title" gorm:"type:varchar(255);not null"`
	Body      string           `json:"body" gorm:"type:text"`
	Link      string           `json:"link,omitempty" gorm:"type:varchar(512)"`
	IsRead    bool             `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_unread"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
