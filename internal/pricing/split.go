package pricing

// PlatformFeePercent is the marketplace cut taken from every payment.
const PlatformFeePercent = 8

// DefaultQuote is used when a performer has published no rates (200.00 GBP).
const DefaultQuote int64 = 20000

// Split is one half-payment of a booking as charged by the gateway.
type Split struct {
	PaymentAmount   int64 `json:"payment_amount_pence"`
	PlatformFee     int64 `json:"platform_fee_pence"`
	PerformerPayout int64 `json:"performer_payout_pence"`
}

// Totals are the booking-level figures, rounded independently of the halves.
type Totals struct {
	PlatformFee     int64 `json:"total_platform_fee_pence"`
	PerformerPayout int64 `json:"total_performer_payout_pence"`
}

// Calculate splits agreedPrice into one of its two equal halves. The deposit
// flag is accepted so call sites read as deposit or final, but both halves
// come out the same. Every step rounds half-up to a whole minor unit.
func Calculate(agreedPrice int64, _ bool, feePercent int64) Split {
	payment := divRound(agreedPrice, 2)
	fee := divRound(payment*feePercent, 100)
	return Split{
		PaymentAmount:   payment,
		PlatformFee:     fee,
		PerformerPayout: payment - fee,
	}
}

func CalculateTotals(agreedPrice int64, feePercent int64) Totals {
	fee := divRound(agreedPrice*feePercent, 100)
	return Totals{
		PlatformFee:     fee,
		PerformerPayout: agreedPrice - fee,
	}
}

// divRound is a/b rounded half away from zero, b > 0.
func divRound(a, b int64) int64 {
	if a < 0 {
		return -divRound(-a, b)
	}
	return (2*a + b) / (2 * b)
}
