package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/email"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	args := m.Called(ctx, userID, id, at)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, m email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m)
	return nil
}

type recordingPusher struct {
	pushed map[string][]interface{}
}

func (p *recordingPusher) SendToUser(userID string, message interface{}) bool {
	if p.pushed == nil {
		p.pushed = map[string][]interface{}{}
	}
	p.pushed[userID] = append(p.pushed[userID], message)
	return true
}

func newDispatcher(t *testing.T, users *MockUserDirectory, repo *MockNotificationRepository, sender email.Sender, pusher Pusher) *Dispatcher {
	t.Helper()
	r, err := email.NewRenderer("https://ignitegigs.test")
	require.NoError(t, err)
	return NewDispatcher(users, repo, r, sender, pusher, zerolog.Nop())
}

func TestDispatch_EmailAndNotification(t *testing.T) {
	users := new(MockUserDirectory)
	repo := new(MockNotificationRepository)
	sender := &recordingSender{}
	pusher := &recordingPusher{}

	users.On("GetByID", mock.Anything, "client-1").Return(&domain.User{ID: "client-1", Email: "cara@example.com"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "performer-1" && n.Type == domain.NotifPayment && n.ID != ""
	})).Return(nil)

	d := newDispatcher(t, users, repo, sender, pusher)
	failed := d.Dispatch(context.Background(), []domain.Effect{
		domain.SendEmail(domain.EmailPaymentConfirmed, "client-1", map[string]any{"performer_name": "Blaze", "payment_type": "deposit"}),
		domain.Notify("performer-1", domain.NotifPayment, "Payment received", "Deposit paid", "/dashboard/bookings/b-1"),
	})

	assert.Equal(t, 0, failed)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "cara@example.com", sender.sent[0].To)
	assert.NotEmpty(t, sender.sent[0].Subject)
	assert.Len(t, pusher.pushed["performer-1"], 1)
	repo.AssertExpectations(t)
}

func TestDispatch_FailuresDoNotStopLaterEffects(t *testing.T) {
	users := new(MockUserDirectory)
	repo := new(MockNotificationRepository)
	sender := &recordingSender{err: errors.New("smtp down")}

	users.On("GetByID", mock.Anything, "client-1").Return(&domain.User{ID: "client-1", Email: "cara@example.com"}, nil)
	users.On("GetByID", mock.Anything, "ghost").Return(nil, domain.NotFound("User not found"))
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	d := newDispatcher(t, users, repo, sender, nil)
	failed := d.Dispatch(context.Background(), []domain.Effect{
		domain.SendEmail(domain.EmailBookingAccepted, "client-1", nil),
		domain.SendEmail(domain.EmailBookingAccepted, "ghost", nil),
		domain.Notify("client-1", domain.NotifBookingUpdate, "a", "b", "c"),
		domain.Notify("client-1", domain.NotifBookingUpdate, "a", "b", "c"),
	})

	assert.Equal(t, 3, failed)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestDispatch_IgnoresCancelledContext(t *testing.T) {
	users := new(MockUserDirectory)
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newDispatcher(t, users, repo, &recordingSender{}, nil)
	assert.Equal(t, 0, d.Dispatch(ctx, []domain.Effect{domain.Notify("u", domain.NotifSystem, "t", "b", "")}))
}

func TestService_ListClampsLimit(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("ListForUser", mock.Anything, "u1", false, maxListLimit).Return([]domain.Notification{{ID: "n1"}}, nil)
	repo.On("CountUnread", mock.Anything, "u1").Return(int64(4), nil)

	list, unread, err := NewService(repo).List(context.Background(), "u1", false, 1000)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(4), unread)
}
