// Package payment charges clients for the two halves of a booking, applies
// gateway confirmations exactly once, and pushes recorded refunds back to the
// gateway.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/gateway"
	"ignitegigs/internal/lifecycle"
	"ignitegigs/internal/logging"
	"ignitegigs/internal/metrics"
	"ignitegigs/internal/pricing"
)

// confirmAttempts bounds the re-read loop when a confirmation loses a race
// with another write to the same booking.
const confirmAttempts = 3

type Config struct {
	Currency         string
	WebhookSecret    string
	WebhookTolerance time.Duration
}

type Service struct {
	bookings   bookingStore
	parties    partyResolver
	performers performerOnboarder
	gateway    gateway.Gateway
	effects    effectDispatcher
	cfg        Config
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(
	bookings bookingStore,
	parties partyResolver,
	performers performerOnboarder,
	gw gateway.Gateway,
	effects effectDispatcher,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "gbp"
	}
	if cfg.WebhookTolerance <= 0 {
		cfg.WebhookTolerance = 5 * time.Minute
	}
	return &Service{
		bookings:   bookings,
		parties:    parties,
		performers: performers,
		gateway:    gw,
		effects:    effects,
		cfg:        cfg,
		log:        log.With().Str("component", "payment").Logger(),
		now:        time.Now,
	}
}

// InitiatePayment creates a gateway intent for whichever half is due and
// returns the handle the client's browser completes the payment with. The
// booking status does not change here.
func (s *Service) InitiatePayment(ctx context.Context, actorID, bookingID string) (*InitiatePaymentResponse, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	parties, performer, err := s.parties.Parties(ctx, b)
	if err != nil {
		return nil, err
	}

	plan, err := lifecycle.PreparePayment(actorID, b, parties, performer)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, gateway.IntentRequest{
		Amount:             plan.Split.PaymentAmount,
		Currency:           s.cfg.Currency,
		ConnectedAccountID: performer.StripeAccountID,
		ApplicationFee:     plan.Split.PlatformFee,
		Description:        fmt.Sprintf("%s payment for %s on %s", plan.Type, parties.PerformerName, b.EventDate.Format("2 Jan 2006")),
		Metadata: map[string]string{
			"booking_id":        b.ID,
			"payment_type":      string(plan.Type),
			"performer_account": performer.StripeAccountID,
		},
		IdempotencyKey: b.ID + ":" + string(plan.Type),
	})
	if err != nil {
		logging.Ctx(ctx, s.log).Error().Err(err).Str("booking_id", b.ID).Str("payment_type", string(plan.Type)).Msg("create payment intent failed")
		return nil, err
	}

	rec := lifecycle.RecordIntent(b, plan, intent.ID, s.now().UTC())
	ok, err := s.bookings.UpdateIf(ctx, b.ID, rec.Expect, rec.Updates)
	if err != nil {
		return nil, fmt.Errorf("record payment intent: %w", err)
	}
	if !ok {
		return nil, domain.InvalidTransition("This booking changed while the payment was being prepared; please try again")
	}

	logging.Ctx(ctx, s.log).Info().
		Str("booking_id", b.ID).
		Str("payment_type", string(plan.Type)).
		Str("intent_id", intent.ID).
		Int64("amount", plan.Split.PaymentAmount).
		Int64("platform_fee", plan.Split.PlatformFee).
		Msg("payment intent created")

	return &InitiatePaymentResponse{
		BookingID:    b.ID,
		PaymentType:  string(plan.Type),
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Currency:     s.cfg.Currency,
		Split:        plan.Split,
	}, nil
}

// ConfirmPayment records a payment the gateway has taken. It is safe to call
// any number of times for the same booking and type: only the call that flips
// the paid flag writes anything or fires effects. duplicate reports the
// other calls.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID string, typ domain.PaymentType, paymentRef string) (duplicate bool, err error) {
	for attempt := 0; attempt < confirmAttempts; attempt++ {
		b, err := s.load(ctx, bookingID)
		if err != nil {
			return false, err
		}
		parties, _, err := s.parties.Parties(ctx, b)
		if err != nil {
			return false, err
		}

		plan, dup, err := lifecycle.ConfirmPayment(b, typ, paymentRef, parties, s.now().UTC())
		if err != nil {
			return false, err
		}
		if dup {
			return true, nil
		}

		ok, err := s.bookings.UpdateIf(ctx, b.ID, plan.Expect, plan.Updates)
		if err != nil {
			return false, fmt.Errorf("confirm payment: %w", err)
		}
		if !ok {
			// Another delivery or a status change won; the re-read decides.
			continue
		}

		to := string(plan.To)
		if to == "" {
			to = string(b.Status)
		}
		metrics.BookingTransitions.WithLabelValues("confirm_"+string(typ), to).Inc()
		logging.Ctx(ctx, s.log).Info().Str("booking_id", b.ID).Str("payment_type", string(typ)).Str("status", to).Msg("payment confirmed")
		s.effects.Dispatch(ctx, plan.Effects)
		return false, nil
	}
	return false, fmt.Errorf("confirm payment: booking %s kept changing", bookingID)
}

// HandleWebhook verifies and processes one gateway event. Once the signature
// checks out the event is acknowledged whatever happens while handling it.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := gateway.ParseEvent(payload, signature, s.cfg.WebhookSecret, s.cfg.WebhookTolerance, s.now())
	if errors.Is(err, domain.ErrInvalidSignature) {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		logging.Ctx(ctx, s.log).Warn().Err(err).Msg("webhook rejected")
		return err
	}
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "failed").Inc()
		logging.Ctx(ctx, s.log).Error().Err(err).Msg("webhook payload undecodable")
		return nil
	}

	log := logging.Ctx(ctx, s.log).With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()
	outcome, err := s.handleEvent(ctx, ev)
	if err != nil {
		outcome = "failed"
		log.Error().Err(err).Msg("webhook handler failed")
	} else {
		log.Info().Str("outcome", outcome).Msg("webhook handled")
	}
	metrics.WebhookEvents.WithLabelValues(ev.Type, outcome).Inc()
	return nil
}

func (s *Service) handleEvent(ctx context.Context, ev *gateway.Event) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch ev.Type {
	case gateway.EventPaymentSucceeded:
		var pi gateway.PaymentIntentObject
		if err := ev.Decode(&pi); err != nil {
			return "", err
		}
		if pi.BookingID() == "" {
			return "ignored", nil
		}
		dup, err := s.ConfirmPayment(ctx, pi.BookingID(), pi.PaymentType(), pi.ID)
		if err != nil {
			return "", err
		}
		if dup {
			return "duplicate", nil
		}
		return "processed", nil

	case gateway.EventPaymentFailed:
		var pi gateway.PaymentIntentObject
		if err := ev.Decode(&pi); err != nil {
			return "", err
		}
		if pi.BookingID() == "" || !pi.PaymentType().IsValid() {
			return "ignored", nil
		}
		b, err := s.load(ctx, pi.BookingID())
		if err != nil {
			return "", err
		}
		reason := ""
		if pi.LastPaymentError != nil {
			reason = pi.LastPaymentError.Message
		}
		logging.Ctx(ctx, s.log).Info().Str("booking_id", b.ID).Str("payment_type", string(pi.PaymentType())).Str("reason", reason).Msg("payment failed")
		s.effects.Dispatch(ctx, lifecycle.PaymentFailed(b, pi.PaymentType()))
		return "processed", nil

	case gateway.EventAccountUpdated:
		var acct gateway.AccountObject
		if err := ev.Decode(&acct); err != nil {
			return "", err
		}
		if !acct.ChargesEnabled || !acct.PayoutsEnabled {
			return "ignored", nil
		}
		n, err := s.performers.MarkOnboarded(ctx, acct.ID)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "ignored", nil
		}
		return "processed", nil

	case gateway.EventPayoutPaid:
		var p gateway.PayoutObject
		if err := ev.Decode(&p); err != nil {
			return "", err
		}
		logging.Ctx(ctx, s.log).Info().Str("payout_id", p.ID).Int64("amount", p.Amount).Msg("payout paid")
		return "processed", nil
	}
	return "ignored", nil
}

// RefundSweeper pushes pending refunds to the gateway. They come from
// dispute resolutions and from payments that landed on called-off bookings.
type RefundSweeper struct {
	bookings refundStore
	gateway  gateway.Gateway
	log      zerolog.Logger
}

func NewRefundSweeper(bookings refundStore, gw gateway.Gateway, log zerolog.Logger) *RefundSweeper {
	return &RefundSweeper{bookings: bookings, gateway: gw, log: log.With().Str("component", "refund_sweep").Logger()}
}

// Run processes up to limit pending refunds. A failed refund stays pending
// and is picked up by the next run.
func (r *RefundSweeper) Run(ctx context.Context, limit int) (processed, failed int, err error) {
	if limit <= 0 {
		limit = 50
	}
	pending, err := r.bookings.ListPendingRefunds(ctx, limit)
	if err != nil {
		return 0, 0, err
	}

	for i := range pending {
		b := &pending[i]
		if err := r.refund(ctx, b); err != nil {
			failed++
			r.log.Error().Err(err).Str("booking_id", b.ID).Msg("refund failed")
			continue
		}
		processed++
	}
	return processed, failed, nil
}

func (r *RefundSweeper) refund(ctx context.Context, b *domain.Booking) error {
	if b.RefundAmount == nil || *b.RefundAmount <= 0 {
		return nil
	}
	if b.PaymentIntentID == "" {
		return errors.New("booking has no payment to refund")
	}

	// Each half is a separate intent and only the latest is on the booking;
	// anything above one half is left for manual handling.
	amount := *b.RefundAmount
	half := pricing.Calculate(b.Price(), true, pricing.PlatformFeePercent).PaymentAmount
	if amount > half {
		r.log.Warn().Str("booking_id", b.ID).Int64("requested", amount).Int64("refunded", half).Msg("refund capped at one payment")
		amount = half
	}

	ref, err := r.gateway.CreateRefund(ctx, gateway.RefundRequest{
		PaymentIntentID: b.PaymentIntentID,
		Amount:          amount,
		Metadata:        map[string]string{"booking_id": b.ID},
		IdempotencyKey:  "refund:" + b.ID + ":" + b.PaymentIntentID,
	})
	if err != nil {
		return err
	}
	if _, err := r.bookings.MarkRefundProcessed(ctx, b.ID); err != nil {
		return fmt.Errorf("refund %s sent but not recorded: %w", ref.ID, err)
	}
	r.log.Info().Str("booking_id", b.ID).Str("refund_id", ref.ID).Int64("amount", amount).Msg("refund processed")
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Booking not found")
		}
		return nil, err
	}
	return b, nil
}
