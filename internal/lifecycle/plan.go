// Package lifecycle decides booking and dispute transitions. It never touches
// storage or the network: each operation checks the actor and the current
// state, then returns the writes to apply and the side effects to run once the
// write has landed.
package lifecycle

import (
	"fmt"
	"time"

	"ignitegigs/internal/domain"
)

// Parties identifies the two sides of a booking by user id.
type Parties struct {
	ClientID        string
	ClientName      string
	PerformerUserID string
	PerformerName   string
}

func (p Parties) IsClient(userID string) bool    { return userID != "" && userID == p.ClientID }
func (p Parties) IsPerformer(userID string) bool { return userID != "" && userID == p.PerformerUserID }

// Other returns the counterparty of userID, or "" when userID is not a party.
func (p Parties) Other(userID string) string {
	switch {
	case p.IsClient(userID):
		return p.PerformerUserID
	case p.IsPerformer(userID):
		return p.ClientID
	}
	return ""
}

// Plan is a conditional booking write. Expect is matched in the same
// statement as the write so racing callers cannot both apply it.
type Plan struct {
	Expect  domain.BookingCondition
	To      domain.BookingStatus
	Updates map[string]any
	Effects []domain.Effect
}

func bookingLink(id string) string { return "/dashboard/bookings/" + id }

func disputeLink(id string) string { return "/dashboard/disputes/" + id }

// FormatPence renders minor units as pounds, e.g. 12345 -> "£123.45".
func FormatPence(p int64) string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s£%d.%02d", sign, p/100, p%100)
}

func formatDate(t time.Time) string { return t.Format("Monday 2 January 2006") }

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func contains(list []domain.BookingStatus, s domain.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
