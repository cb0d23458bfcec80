package lifecycle

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"ignitegigs/internal/domain"
)

const maxEvidence = 10

type DisputeInput struct {
	Reason      domain.DisputeReason
	Description string
	Evidence    []string
}

// RaiseDispute builds a dispute from one party against the other and the
// booking write that marks it disputed. Whether the actor already raised one
// is a storage question answered by the caller.
func RaiseDispute(id, actorID string, b *domain.Booking, parties Parties, in DisputeInput, now time.Time) (*domain.Dispute, Plan, error) {
	against := parties.Other(actorID)
	if against == "" || against == actorID {
		return nil, Plan{}, domain.Unauthorized()
	}
	if !b.Status.CanTransitionTo(domain.BookingDisputed) {
		return nil, Plan{}, domain.InvalidTransition(fmt.Sprintf("A %s booking cannot be disputed", b.Status))
	}
	if !in.Reason.IsValid() {
		return nil, Plan{}, domain.Validation("Please select a valid reason for the dispute")
	}
	desc := strings.TrimSpace(in.Description)
	if len([]rune(desc)) < domain.MinDisputeDescription {
		return nil, Plan{}, domain.Validation(fmt.Sprintf("Please describe the problem in at least %d characters", domain.MinDisputeDescription))
	}
	evidence, err := cleanEvidence(in.Evidence)
	if err != nil {
		return nil, Plan{}, err
	}

	d := &domain.Dispute{
		ID:            id,
		BookingID:     b.ID,
		RaisedBy:      actorID,
		RaisedAgainst: against,
		Reason:        in.Reason,
		Description:   desc,
		EvidenceURLs:  evidence,
		Status:        domain.DisputeOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	raiser := parties.ClientName
	if parties.IsPerformer(actorID) {
		raiser = parties.PerformerName
	}
	plan := Plan{
		Expect: domain.BookingCondition{},
		To:     domain.BookingDisputed,
		Updates: map[string]any{
			"status":     string(domain.BookingDisputed),
			"updated_at": now,
		},
		Effects: []domain.Effect{
			domain.Notify(against, domain.NotifDispute, "Dispute Filed",
				"A dispute has been filed regarding your booking. Our team will review it and be in touch.",
				bookingLink(b.ID)),
			domain.SendEmail(domain.EmailDisputeFiled, against, map[string]any{
				"booking_id": b.ID,
				"dispute_id": d.ID,
				"raised_by":  nameOr(raiser, "The other party"),
				"reason":     in.Reason.Label(),
				"event_date": formatDate(b.EventDate),
				"link":       disputeLink(d.ID),
			}),
		},
	}
	return d, plan, nil
}

func cleanEvidence(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, line := range strings.Split(r, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			u, err := url.Parse(line)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, domain.Validation(fmt.Sprintf("Evidence link %q is not a valid URL", line))
			}
			out = append(out, line)
		}
	}
	if len(out) > maxEvidence {
		return nil, domain.Validation(fmt.Sprintf("At most %d evidence links are allowed", maxEvidence))
	}
	return out, nil
}

// DisputeChange is an administrative write to a dispute and, for refunds,
// to its booking.
type DisputeChange struct {
	Updates        map[string]any
	BookingUpdates map[string]any
	Effects        []domain.Effect
}

var defaultResolution = map[domain.DisputeStatus]string{
	domain.DisputeResolvedRefund:   "Refund issued to client",
	domain.DisputeResolvedWarning:  "Warning issued to the reported party",
	domain.DisputeResolvedNoAction: "No action taken after review",
	domain.DisputeClosed:           "Dispute closed",
}

// Resolve concludes a dispute. refund is required for resolved_refund and
// ignored otherwise. The booking keeps its disputed status.
func Resolve(adminID string, d *domain.Dispute, b *domain.Booking, to domain.DisputeStatus, resolution string, refund *int64, now time.Time) (DisputeChange, error) {
	if !to.IsFinal() {
		return DisputeChange{}, domain.Validation("Unknown resolution")
	}
	if d.Status.IsFinal() {
		return DisputeChange{}, domain.InvalidTransition(fmt.Sprintf("Dispute is already %s", d.Status))
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		resolution = defaultResolution[to]
	}

	c := DisputeChange{
		Updates: map[string]any{
			"status":      string(to),
			"resolution":  resolution,
			"resolved_by": adminID,
			"resolved_at": now,
			"updated_at":  now,
		},
	}

	if to == domain.DisputeResolvedRefund {
		if refund == nil || *refund <= 0 {
			return DisputeChange{}, domain.Validation("Refund amount must be greater than zero")
		}
		if b != nil && *refund > b.Price() {
			return DisputeChange{}, domain.Validation(fmt.Sprintf("Refund cannot exceed the booking price of %s", FormatPence(b.Price())))
		}
		c.Updates["refund_amount"] = *refund
		c.BookingUpdates = map[string]any{
			"refund_amount":    *refund,
			"refund_processed": false,
			"updated_at":       now,
		}
		resolution = fmt.Sprintf("%s (%s)", resolution, FormatPence(*refund))
	}

	c.Effects = []domain.Effect{
		domain.Notify(d.RaisedBy, domain.NotifDispute, "Dispute Resolved", resolution, disputeLink(d.ID)),
	}
	return c, nil
}

// StartReview moves an open dispute under review.
func StartReview(d *domain.Dispute, now time.Time) (DisputeChange, error) {
	if d.Status != domain.DisputeOpen {
		return DisputeChange{}, domain.InvalidTransition(fmt.Sprintf("Only open disputes can be reviewed; this one is %s", d.Status))
	}
	return DisputeChange{
		Updates: map[string]any{
			"status":     string(domain.DisputeUnderReview),
			"updated_at": now,
		},
		Effects: []domain.Effect{
			domain.Notify(d.RaisedBy, domain.NotifDispute, "Dispute Under Review",
				"Our team has started reviewing your dispute.", disputeLink(d.ID)),
		},
	}, nil
}

func AddNotes(d *domain.Dispute, notes string, now time.Time) (DisputeChange, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return DisputeChange{}, domain.Validation("Notes cannot be empty")
	}
	return DisputeChange{
		Updates: map[string]any{
			"admin_notes": notes,
			"updated_at":  now,
		},
	}, nil
}
