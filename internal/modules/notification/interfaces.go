package notification

import (
	"context"
	"time"

	"ignitegigs/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Renderer interface {
	Render(name domain.EmailTemplate, data map[string]any) (subject, html string, err error)
}

// Pusher delivers a payload to a connected user, reporting whether anyone
// was listening.
type Pusher interface {
	SendToUser(userID string, message interface{}) bool
}
