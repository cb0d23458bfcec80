package review

import (
	"context"
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

	f := &fixture{bookings: repository.NewBookingRepository(db), effects: &recordingDispatcher{}}
	f.svc = NewService(repository.NewReviewRepository(db), f.bookings, performers,
		directoryParties{booking.NewDirectory(users, performers)}, f.effects, zerolog.Nop())
	f.svc.now = func() time.Time { return time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) seed(t *testing.T, status domain.BookingStatus, completed bool) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		ID: uuid.NewString(), PerformerID: "perf-1", ClientID: "u-client", Status: status,
		EventDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Location: "York", QuotedPrice: 20000,
	}
	if completed {
		at := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
		b.CompletedAt = &at
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

func intp(v int) *int { return &v }

func TestCreate_ClientReviewsPerformer(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, domain.BookingCompleted, true)

	rv, err := f.svc.Create(context.Background(), "u-client", b.ID, CreateReviewRequest{
		Rating: 5, Content: "  Incredible fire show  ", ValueRating: intp(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "u-perf", rv.RevieweeID)
	assert.Equal(t, domain.ReviewerClient, rv.ReviewerType)
	assert.Equal(t, "Incredible fire show", rv.Content)
	assert.True(t, rv.IsPublic)

	require.Len(t, f.effects.effects, 1)
	n := f.effects.effects[0].Notify
	require.NotNil(t, n)
	assert.Equal(t, "u-perf", n.UserID)
	assert.Equal(t, "Cara left you a 5-star review", n.Body)

	_, err = f.svc.Create(context.Background(), "u-client", b.ID, CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// the performer reviews the client independently
	rv, err = f.svc.Create(context.Background(), "u-perf", b.ID, CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "u-client", rv.RevieweeID)
	assert.Equal(t, domain.ReviewerPerformer, rv.ReviewerType)
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	confirmed := f.seed(t, domain.BookingConfirmed, false)
	disputedEarly := f.seed(t, domain.BookingDisputed, false)
	disputedAfter := f.seed(t, domain.BookingDisputed, true)

	_, err := f.svc.Create(ctx, "u-client", confirmed.ID, CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Create(ctx, "u-client", disputedEarly.ID, CreateReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Create(ctx, "u-client", disputedAfter.ID, CreateReviewRequest{Rating: 1})
	assert.NoError(t, err)

	_, err = f.svc.Create(ctx, "u-stranger", disputedAfter.ID, CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.Create(ctx, "u-client", "missing", CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Create(ctx, "u-perf", disputedAfter.ID, CreateReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create(ctx, "u-perf", disputedAfter.ID, CreateReviewRequest{Rating: 4, CommunicationRating: intp(0)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListForPerformer_PublicOnlyWithSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, r := range []struct {
		rating  int
		private bool
	}{{5, false}, {4, false}, {1, true}} {
		b := f.seed(t, domain.BookingCompleted, true)
		_, err := f.svc.Create(ctx, "u-client", b.ID, CreateReviewRequest{Rating: r.rating, Private: r.private})
		require.NoError(t, err)
	}

	out, err := f.svc.ListForPerformer(ctx, "perf-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, out.Reviews, 2)
	assert.Equal(t, int64(2), out.Summary.Count)
	assert.InDelta(t, 4.5, out.Summary.Average, 0.001)

	_, err = f.svc.ListForPerformer(ctx, "perf-missing", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRespond_OnlyRevieweeOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.BookingCompleted, true)
	rv, err := f.svc.Create(ctx, "u-client", b.ID, CreateReviewRequest{Rating: 2, Content: "Late start"})
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, "u-client", rv.ID, "Thanks")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.Respond(ctx, "u-perf", rv.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.svc.Respond(ctx, "u-perf", rv.ID, "Traffic on the M1, sorry!")
	require.NoError(t, err)
	require.NotNil(t, got.Response)
	assert.Equal(t, "Traffic on the M1, sorry!", *got.Response)

	_, err = f.svc.Respond(ctx, "u-perf", rv.ID, "Again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
