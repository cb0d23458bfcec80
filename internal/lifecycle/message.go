package lifecycle

import (
	"strings"
	"time"
	"unicode/utf8"

	"ignitegigs/internal/domain"
)

const (
	MaxMessageLength = 5000
	previewLength    = 140
)

// NewMessage builds a message between the two parties of a booking and the
// effects that tell the other side about it.
func NewMessage(id, senderID string, b *domain.Booking, parties Parties, content string, now time.Time) (*domain.Message, []domain.Effect, error) {
	recipient := parties.Other(senderID)
	if recipient == "" {
		return nil, nil, domain.Unauthorized()
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, domain.Validation("Message cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, nil, domain.Validation("Message is too long")
	}

	sender := parties.ClientName
	if parties.IsPerformer(senderID) {
		sender = parties.PerformerName
	}
	sender = nameOr(sender, "Someone")

	m := &domain.Message{
		ID:        id,
		BookingID: b.ID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
	}
	effects := []domain.Effect{
		domain.Notify(recipient, domain.NotifMessage, "New Message", sender+" sent you a message", bookingLink(b.ID)),
		domain.SendEmail(domain.EmailNewMessage, recipient, map[string]any{
			"booking_id":  b.ID,
			"sender_name": sender,
			"preview":     preview(content),
			"link":        bookingLink(b.ID),
		}),
	}
	return m, effects, nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	r := []rune(s)
	return string(r[:previewLength]) + "…"
}
