package lifecycle

import (
	"fmt"
	"time"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/pricing"
)

// PaymentPlan is what the client is about to be charged for one half.
type PaymentPlan struct {
	Type   domain.PaymentType
	Price  int64
	Split  pricing.Split
	Totals pricing.Totals
}

// PreparePayment decides which half is due and how it splits. It does not
// change the booking status; only a confirmed payment does.
func PreparePayment(actorID string, b *domain.Booking, parties Parties, performer *domain.PerformerProfile) (PaymentPlan, error) {
	if !parties.IsClient(actorID) || b.ClientID != actorID {
		return PaymentPlan{}, domain.Unauthorized()
	}

	var typ domain.PaymentType
	switch {
	case b.Status == domain.BookingAccepted && !b.DepositPaid:
		typ = domain.PaymentDeposit
	case b.Status == domain.BookingConfirmed && b.DepositPaid && !b.FinalPaid:
		typ = domain.PaymentFinal
	default:
		return PaymentPlan{}, domain.InvalidTransition("This booking is not awaiting payment")
	}

	if performer == nil || !performer.PayoutReady() {
		return PaymentPlan{}, &domain.Error{Kind: domain.ErrPayeeNotReady, Message: "The performer has not finished setting up payments yet"}
	}

	price := b.Price()
	if price <= 0 {
		return PaymentPlan{}, domain.Validation("Booking has no price to charge")
	}

	return PaymentPlan{
		Type:   typ,
		Price:  price,
		Split:  pricing.Calculate(price, typ == domain.PaymentDeposit, pricing.PlatformFeePercent),
		Totals: pricing.CalculateTotals(price, pricing.PlatformFeePercent),
	}, nil
}

// RecordIntent stores the created intent on the booking. Deposit initiation
// also records the money breakdown. The status is left alone.
func RecordIntent(b *domain.Booking, p PaymentPlan, intentID string, now time.Time) Plan {
	updates := map[string]any{
		"payment_intent_id": intentID,
		"updated_at":        now,
	}
	if p.Type == domain.PaymentDeposit {
		updates["deposit_amount"] = p.Split.PaymentAmount
		updates["platform_fee"] = p.Totals.PlatformFee
		updates["performer_payout"] = p.Totals.PerformerPayout
	}
	return Plan{
		Expect:  domain.BookingCondition{Statuses: []domain.BookingStatus{b.Status}},
		Updates: updates,
	}
}

// ConfirmPayment applies a gateway-confirmed payment. duplicate is true when
// the matching paid flag is already set, in which case nothing is planned.
//
// The paid flag is always recorded on first delivery. The status only moves
// when the lifecycle table allows it, so a late payment on a disputed or
// cancelled booking keeps that status. A final payment arriving before the
// deposit is accepted.
func ConfirmPayment(b *domain.Booking, typ domain.PaymentType, paymentRef string, parties Parties, now time.Time) (plan Plan, duplicate bool, err error) {
	if !typ.IsValid() {
		return Plan{}, false, domain.Validation("Unknown payment type")
	}

	flag, paidAt := "deposit_paid", "deposit_paid_at"
	target := domain.BookingConfirmed
	if typ == domain.PaymentFinal {
		flag, paidAt = "final_paid", "final_paid_at"
		target = domain.BookingCompleted
	}
	if (typ == domain.PaymentDeposit && b.DepositPaid) || (typ == domain.PaymentFinal && b.FinalPaid) {
		return Plan{}, true, nil
	}
	if b.Status == domain.BookingCancelled || b.Status == domain.BookingDeclined {
		return lateRefund(b, typ, flag, paidAt, paymentRef, parties, now), false, nil
	}

	updates := map[string]any{
		flag:         true,
		paidAt:       now,
		"updated_at": now,
	}
	if paymentRef != "" {
		updates["payment_intent_id"] = paymentRef
	}
	var to domain.BookingStatus
	if b.Status.CanTransitionTo(target) {
		to = target
		updates["status"] = string(target)
	}
	if typ == domain.PaymentFinal {
		updates["completed_at"] = now
	}

	half := pricing.Calculate(b.Price(), typ == domain.PaymentDeposit, pricing.PlatformFeePercent)
	effects := []domain.Effect{
		domain.SendEmail(domain.EmailPaymentConfirmed, parties.ClientID, map[string]any{
			"booking_id":     b.ID,
			"client_name":    parties.ClientName,
			"performer_name": parties.PerformerName,
			"payment_type":   string(typ),
			"amount":         FormatPence(half.PaymentAmount),
			"event_date":     formatDate(b.EventDate),
			"link":           bookingLink(b.ID),
		}),
		domain.Notify(parties.PerformerUserID, domain.NotifPayment, "Payment Received",
			paymentBody(typ, half.PerformerPayout, to == domain.BookingConfirmed), bookingLink(b.ID)),
	}
	if typ == domain.PaymentFinal {
		effects = append(effects, domain.SendEmail(domain.EmailReviewReminder, parties.ClientID, map[string]any{
			"booking_id":     b.ID,
			"client_name":    parties.ClientName,
			"performer_name": parties.PerformerName,
			"link":           bookingLink(b.ID) + "/review",
		}))
	}

	return Plan{
		Expect:  domain.BookingCondition{Statuses: []domain.BookingStatus{b.Status}, Unset: flag},
		To:      to,
		Updates: updates,
		Effects: effects,
	}, false, nil
}

// PaymentFailed is the client notice for a declined card.
func PaymentFailed(b *domain.Booking, typ domain.PaymentType) []domain.Effect {
	return []domain.Effect{
		domain.SendEmail(domain.EmailPaymentFailed, b.ClientID, map[string]any{
			"booking_id":   b.ID,
			"payment_type": string(typ),
			"link":         bookingLink(b.ID) + "/pay",
		}),
		domain.Notify(b.ClientID, domain.NotifPayment, "Payment Failed",
			"Your "+string(typ)+" payment could not be processed. Please try again.", bookingLink(b.ID)+"/pay"),
	}
}

func paymentBody(typ domain.PaymentType, payout int64, confirmed bool) string {
	if typ == domain.PaymentFinal {
		return "Final payment received. " + FormatPence(payout) + " is on its way to your account."
	}
	if !confirmed {
		return "Deposit received. " + FormatPence(payout) + " is on its way to your account."
	}
	return "Deposit received. " + FormatPence(payout) + " is on its way to your account and the booking is confirmed."
}

// lateRefund handles money that lands after the booking was called off. The
// paid flag is still set so redelivery stays a duplicate, and the half is
// queued for the refund sweep instead of being confirmed to either party.
func lateRefund(b *domain.Booking, typ domain.PaymentType, flag, paidAt, paymentRef string, parties Parties, now time.Time) Plan {
	half := pricing.Calculate(b.Price(), typ == domain.PaymentDeposit, pricing.PlatformFeePercent)
	updates := map[string]any{
		flag:               true,
		paidAt:             now,
		"refund_amount":    half.PaymentAmount,
		"refund_processed": false,
		"updated_at":       now,
	}
	if paymentRef != "" {
		updates["payment_intent_id"] = paymentRef
	}
	body := fmt.Sprintf("Your %s payment of %s arrived after the booking was %s. It will be refunded to your card.",
		typ, FormatPence(half.PaymentAmount), b.Status)
	return Plan{
		Expect:  domain.BookingCondition{Statuses: []domain.BookingStatus{b.Status}, Unset: flag},
		Updates: updates,
		Effects: []domain.Effect{
			domain.Notify(parties.ClientID, domain.NotifPayment, "Payment Refund", body, bookingLink(b.ID)),
		},
	}
}
