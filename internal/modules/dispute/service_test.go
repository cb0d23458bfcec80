package dispute

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ignitegigs/internal/database"
	"ignitegigs/internal/domain"
	"ignitegigs/internal/lifecycle"
	"ignitegigs/internal/modules/booking"
	"ignitegigs/internal/repository"
)

type recordingDispatcher struct {
	mu      sync.Mutex
	effects []domain.Effect
}

func (d *recordingDispatcher) Dispatch(_ context.Context, effects []domain.Effect) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.effects = append(d.effects, effects...)
	return 0
}

type directoryParties struct{ d *booking.Directory }

func (p directoryParties) Parties(ctx context.Context, b *domain.Booking) (lifecycle.Parties, *domain.PerformerProfile, error) {
	return p.d.ForBooking(ctx, b)
}

type fixture struct {
	bookings *repository.BookingRepository
	disputes *repository.DisputeRepository
	effects  *recordingDispatcher
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	performers := repository.NewPerformerRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u-client", Email: "cara@example.com", FullName: "Cara", Role: domain.RoleClient}))
	require.NoError(t, users.CreateWithProfile(ctx,
		&domain.User{ID: "u-perf", Email: "blaze@example.com", FullName: "Pat", Role: domain.RolePerformer},
		&domain.PerformerProfile{ID: "perf-1", StageName: "Blaze", IsActive: true},
	))

	f := &fixture{
		bookings: repository.NewBookingRepository(db),
		disputes: repository.NewDisputeRepository(db),
		effects:  &recordingDispatcher{},
	}
	f.svc = NewService(f.disputes, f.bookings, directoryParties{booking.NewDirectory(users, performers)}, f.effects, zerolog.Nop())
	f.svc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) seed(t *testing.T, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	price := int64(20000)
	b := &domain.Booking{
		ID: uuid.NewString(), PerformerID: "perf-1", ClientID: "u-client", Status: status,
		EventDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Location: "York",
		QuotedPrice: price, AgreedPrice: &price,
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

func validRequest() RaiseDisputeRequest {
	return RaiseDisputeRequest{
		Reason:      domain.ReasonNoShow,
		Description: strings.Repeat("The performer did not arrive at the venue. ", 2),
		Evidence:    []string{"https://photos.example.com/a.jpg\nhttps://photos.example.com/b.jpg"},
	}
}

func TestRaise_MarksBookingDisputed(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, domain.BookingCompleted)

	d, err := f.svc.Raise(context.Background(), "u-client", b.ID, validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.DisputeOpen, d.Status)
	assert.Equal(t, "u-perf", d.RaisedAgainst)
	assert.Len(t, d.EvidenceURLs, 2)

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDisputed, got.Status)
	require.NotEmpty(t, f.effects.effects)
	assert.Equal(t, "u-perf", f.effects.effects[0].Notify.UserID)
}

func TestRaise_DuplicateAndBothParties(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, domain.BookingConfirmed)
	ctx := context.Background()

	_, err := f.svc.Raise(ctx, "u-client", b.ID, validRequest())
	require.NoError(t, err)

	_, err = f.svc.Raise(ctx, "u-client", b.ID, validRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicateDispute)

	d, err := f.svc.Raise(ctx, "u-perf", b.ID, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "u-client", d.RaisedAgainst)

	list, err := f.disputes.ListForBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRaise_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.BookingAccepted)

	_, err := f.svc.Raise(ctx, "stranger", b.ID, validRequest())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	short := validRequest()
	short.Description = "too short"
	_, err = f.svc.Raise(ctx, "u-client", b.ID, short)
	assert.ErrorIs(t, err, domain.ErrValidation)

	badReason := validRequest()
	badReason.Reason = "bored"
	_, err = f.svc.Raise(ctx, "u-client", b.ID, badReason)
	assert.ErrorIs(t, err, domain.ErrValidation)

	declined := f.seed(t, domain.BookingDeclined)
	_, err = f.svc.Raise(ctx, "u-client", declined.ID, validRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Raise(ctx, "u-client", "missing", validRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveWithRefund_RecordsPendingRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.BookingCompleted)
	d, err := f.svc.Raise(ctx, "u-client", b.ID, validRequest())
	require.NoError(t, err)

	d, err = f.svc.StartReview(ctx, "admin-1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeUnderReview, d.Status)

	d, err = f.svc.ResolveWithRefund(ctx, "admin-1", d.ID, "", 5000)
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeResolvedRefund, d.Status)
	assert.Equal(t, "admin-1", d.ResolvedBy)

	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDisputed, got.Status, "resolution does not revert the booking")
	require.NotNil(t, got.RefundAmount)
	assert.Equal(t, int64(5000), *got.RefundAmount)
	assert.False(t, got.RefundProcessed)

	_, err = f.svc.Close(ctx, "admin-1", d.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestResolve_OtherOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tc := range []struct {
		resolve func(id string) (*domain.Dispute, error)
		want    domain.DisputeStatus
	}{
		{func(id string) (*domain.Dispute, error) {
			return f.svc.ResolveWithWarning(ctx, "admin-1", id, "Final warning")
		}, domain.DisputeResolvedWarning},
		{func(id string) (*domain.Dispute, error) { return f.svc.ResolveWithNoAction(ctx, "admin-1", id, "") }, domain.DisputeResolvedNoAction},
		{func(id string) (*domain.Dispute, error) { return f.svc.Close(ctx, "admin-1", id, "") }, domain.DisputeClosed},
	} {
		b := f.seed(t, domain.BookingCompleted)
		d, err := f.svc.Raise(ctx, "u-perf", b.ID, validRequest())
		require.NoError(t, err)

		d, err = tc.resolve(d.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, d.Status)
		assert.NotEmpty(t, d.Resolution)
		assert.NotNil(t, d.ResolvedAt)
	}
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.BookingCompleted)
	d, err := f.svc.Raise(ctx, "u-client", b.ID, validRequest())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, domain.Actor{UserID: "u-client"}, d.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, domain.Actor{UserID: "u-perf"}, d.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}, d.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, domain.Actor{UserID: "stranger"}, d.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// cancelAfterRead hands out the booking as it was, then cancels it, the way a
// client cancelling mid-request would.
type cancelAfterRead struct {
	bookings *repository.BookingRepository
}

func (r cancelAfterRead) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := r.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.bookings.UpdateIf(ctx, id, domain.BookingCondition{}, map[string]any{"status": string(domain.BookingCancelled)}); err != nil {
		return nil, err
	}
	return b, nil
}

func TestRaise_BookingCancelledMeanwhile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.BookingConfirmed)
	f.svc.bookings = cancelAfterRead{f.bookings}

	_, err := f.svc.Raise(ctx, "u-client", b.ID, validRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	list, err := f.disputes.ListForBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.effects.effects)
}

func TestListForBooking_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.BookingCompleted)
	_, err := f.svc.Raise(ctx, "u-client", b.ID, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Raise(ctx, "u-perf", b.ID, validRequest())
	require.NoError(t, err)

	for _, actor := range []domain.Actor{
		{UserID: "u-client"},
		{UserID: "u-perf"},
		{UserID: "admin-1", Role: domain.RoleAdmin},
	} {
		list, err := f.svc.ListForBooking(ctx, actor, b.ID)
		require.NoError(t, err, actor.UserID)
		require.Len(t, list, 2)
		assert.ElementsMatch(t, []string{"u-client", "u-perf"}, []string{list[0].RaisedBy, list[1].RaisedBy})
	}

	_, err = f.svc.ListForBooking(ctx, domain.Actor{UserID: "stranger"}, b.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.ListForBooking(ctx, domain.Actor{UserID: "u-client"}, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.BookingCompleted)
	d, err := f.svc.Raise(ctx, "u-client", b.ID, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Raise(ctx, "u-perf", b.ID, validRequest())
	require.NoError(t, err)
	_, err = f.svc.StartReview(ctx, "admin-1", d.ID)
	require.NoError(t, err)

	open, err := f.svc.List(ctx, "open", 0, 0)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	all, err := f.svc.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.List(ctx, "lost", 0, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
