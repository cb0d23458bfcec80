package notification

import (
	"context"
	"time"

	"ignitegigs/internal/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	repo NotificationRepository
	now  func() time.Time
}

func NewService(repo NotificationRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the newest notifications of userID and the unread total.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	list, err := s.repo.ListForUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id, s.now().UTC())
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now().UTC())
}
