package pricing

// Rates are a performer's published prices in minor units. Nil means unset.
type Rates struct {
	Hourly *int64
	Event  *int64
	Min    *int64
}

// Quote picks the initial price of a booking: hourly rate times duration,
// else the flat event rate, else the minimum rate, else DefaultQuote.
func Quote(r Rates, durationHours *int) int64 {
	if r.Hourly != nil && durationHours != nil && *durationHours > 0 {
		return *r.Hourly * int64(*durationHours)
	}
	if r.Event != nil {
		return *r.Event
	}
	if r.Min != nil {
		return *r.Min
	}
	return DefaultQuote
}
