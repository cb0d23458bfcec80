package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ignitegigs/internal/database"
	"ignitegigs/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedBooking(t *testing.T, db *gorm.DB, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		ID:          uuid.NewString(),
		PerformerID: "perf-1",
		ClientID:    "client-1",
		Status:      status,
		EventDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Location:    "Leeds",
		QuotedPrice: 20000,
	}
	require.NoError(t, NewBookingRepository(db).Create(context.Background(), b))
	return b
}

func TestBookingRepository_GetByIDNotFound(t *testing.T) {
	repo := NewBookingRepository(newTestDB(t))
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepository_UpdateIfMatchesCondition(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()
	b := seedBooking(t, db, domain.BookingInquiry)

	ok, err := repo.UpdateIf(ctx, b.ID, domain.BookingCondition{
		Statuses:    domain.RespondableStatuses,
		PerformerID: "someone-else",
	}, map[string]any{"status": string(domain.BookingAccepted)})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateIf(ctx, b.ID, domain.BookingCondition{
		Statuses:    domain.RespondableStatuses,
		PerformerID: "perf-1",
	}, map[string]any{"status": string(domain.BookingAccepted)})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAccepted, got.Status)

	ok, err = repo.UpdateIf(ctx, b.ID, domain.BookingCondition{
		Statuses: domain.RespondableStatuses,
	}, map[string]any{"status": string(domain.BookingDeclined)})
	require.NoError(t, err)
	assert.False(t, ok, "no longer respondable")
}

func TestBookingRepository_UnsetFlagIsCheckedAtomically(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()
	b := seedBooking(t, db, domain.BookingAccepted)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.UpdateIf(ctx, b.ID, domain.BookingCondition{Unset: "deposit_paid"}, map[string]any{
				"deposit_paid": true,
				"status":       string(domain.BookingConfirmed),
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	_, err := repo.UpdateIf(ctx, b.ID, domain.BookingCondition{Unset: "status; DROP TABLE bookings"}, map[string]any{"status": "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingRepository_PendingRefunds(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()
	withRefund := seedBooking(t, db, domain.BookingDisputed)
	seedBooking(t, db, domain.BookingDisputed)

	_, err := repo.UpdateIf(ctx, withRefund.ID, domain.BookingCondition{}, map[string]any{"refund_amount": int64(5000)})
	require.NoError(t, err)

	pending, err := repo.ListPendingRefunds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, withRefund.ID, pending[0].ID)

	ok, err := repo.MarkRefundProcessed(ctx, withRefund.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkRefundProcessed(ctx, withRefund.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	pending, err = repo.ListPendingRefunds(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestBookingRepository_Lists(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()
	seedBooking(t, db, domain.BookingInquiry)
	seedBooking(t, db, domain.BookingAccepted)

	mine, err := repo.ListForClient(ctx, "client-1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := repo.ListForPerformer(ctx, "perf-1", 1, 0)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	none, err := repo.ListForClient(ctx, "nobody", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func newDispute(bookingID, raisedBy, against string) *domain.Dispute {
	return &domain.Dispute{
		ID:            uuid.NewString(),
		BookingID:     bookingID,
		RaisedBy:      raisedBy,
		RaisedAgainst: against,
		Reason:        domain.ReasonNoShow,
		Description:   "The performer never arrived at the venue and did not answer the phone.",
		EvidenceURLs:  []string{"https://example.com/photo.jpg"},
		Status:        domain.DisputeOpen,
	}
}

func TestDisputeRepository_CreateAndMarkSkipsCalledOffBookings(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)
	bookings := NewBookingRepository(db)
	ctx := context.Background()
	marked := map[string]any{"status": string(domain.BookingDisputed)}

	for _, status := range []domain.BookingStatus{domain.BookingCancelled, domain.BookingDeclined} {
		b := seedBooking(t, db, status)
		err := repo.CreateAndMark(ctx, newDispute(b.ID, "client-1", "perf-user-1"), marked)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, status)

		got, err := bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)

		exists, err := repo.Exists(ctx, b.ID, "client-1")
		require.NoError(t, err)
		assert.False(t, exists, "dispute insert must roll back")
	}

	err := repo.CreateAndMark(ctx, newDispute("no-such-booking", "client-1", "perf-user-1"), marked)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisputeRepository_OnePerRaiser(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)
	bookings := NewBookingRepository(db)
	ctx := context.Background()
	b := seedBooking(t, db, domain.BookingCompleted)
	marked := map[string]any{"status": string(domain.BookingDisputed)}

	require.NoError(t, repo.CreateAndMark(ctx, newDispute(b.ID, "client-1", "perf-user-1"), marked))
	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDisputed, got.Status)

	exists, err := repo.Exists(ctx, b.ID, "client-1")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.CreateAndMark(ctx, newDispute(b.ID, "client-1", "perf-user-1"), marked)
	assert.ErrorIs(t, err, domain.ErrDuplicateDispute)

	require.NoError(t, repo.CreateAndMark(ctx, newDispute(b.ID, "perf-user-1", "client-1"), marked))
	all, err := repo.ListForBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"https://example.com/photo.jpg"}, all[0].EvidenceURLs)
}

func TestDisputeRepository_CreateRollsBackWithoutBooking(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)
	ctx := context.Background()

	d := newDispute("missing-booking", "client-1", "perf-user-1")
	err := repo.CreateAndMark(ctx, d, map[string]any{"status": string(domain.BookingDisputed)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisputeRepository_UpdateIf(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)
	ctx := context.Background()
	b := seedBooking(t, db, domain.BookingDisputed)
	d := newDispute(b.ID, "client-1", "perf-user-1")
	require.NoError(t, repo.CreateAndMark(ctx, d, map[string]any{"status": string(domain.BookingDisputed)}))

	open := []domain.DisputeStatus{domain.DisputeOpen, domain.DisputeUnderReview}
	ok, err := repo.UpdateIf(ctx, d, open,
		map[string]any{"status": string(domain.DisputeResolvedRefund)},
		map[string]any{"refund_amount": int64(4000), "refund_processed": false})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateIf(ctx, d, open, map[string]any{"status": string(domain.DisputeClosed)}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := NewBookingRepository(db).GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefundAmount)
	assert.Equal(t, int64(4000), *got.RefundAmount)
	assert.Equal(t, domain.BookingDisputed, got.Status)

	list, err := repo.List(ctx, domain.DisputeResolvedRefund, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = repo.List(ctx, domain.DisputeOpen, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserRepository_EmailUniqueAndNormalized(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &domain.User{ID: uuid.NewString(), Email: " Fire@Example.com ", FullName: "Fi Re", Role: domain.RolePerformer}
	p := &domain.PerformerProfile{ID: uuid.NewString(), IsActive: true}
	require.NoError(t, repo.CreateWithProfile(ctx, u, p))
	assert.Equal(t, "fire@example.com", u.Email)

	got, err := repo.GetByEmail(ctx, "FIRE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = repo.Create(ctx, &domain.User{ID: uuid.NewString(), Email: "fire@example.com", FullName: "Dup"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	profile, err := NewPerformerRepository(db).GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, profile.ID)
}

func TestPerformerRepository_MarkOnboarded(t *testing.T) {
	db := newTestDB(t)
	repo := NewPerformerRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.PerformerProfile{
		ID: "perf-1", UserID: "u-1", StripeAccountID: "acct_1", IsActive: true,
	}))

	n, err := repo.MarkOnboarded(ctx, "acct_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.MarkOnboarded(ctx, "acct_1")
	require.NoError(t, err)
	assert.Zero(t, n)

	p, err := repo.GetByID(ctx, "perf-1")
	require.NoError(t, err)
	assert.True(t, p.PayoutReady())
}

func TestNotificationRepository_ReadState(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Notification{
			ID: uuid.NewString(), UserID: "u-1", Type: domain.NotifSystem, Title: "Hello",
		}))
	}
	list, err := repo.ListForUser(ctx, "u-1", false, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.ErrorIs(t, repo.MarkRead(ctx, "u-2", list[0].ID, now), domain.ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, "u-1", list[0].ID, now))

	unread, err := repo.CountUnread(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	n, err := repo.MarkAllRead(ctx, "u-1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = repo.ListForUser(ctx, "u-1", true, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMessageRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second"} {
		require.NoError(t, repo.Create(ctx, &domain.Message{
			ID: uuid.NewString(), BookingID: "b-1", SenderID: "u-1", Content: text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	msgs, err := repo.ListForBooking(ctx, "b-1", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
}
