// Package gateway talks to the marketplace payment provider: payment intents
// routed to a performer's connected account, refunds, and signed webhooks.
package gateway

import "context"

// IntentRequest describes a charge routed to a connected account with the
// platform fee withheld at the gateway.
type IntentRequest struct {
	Amount             int64
	Currency           string
	ConnectedAccountID string
	ApplicationFee     int64
	Description        string
	Metadata           map[string]string
	// IdempotencyKey makes retries of the same request return the same intent.
	IdempotencyKey string
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
}

type RefundRequest struct {
	PaymentIntentID string
	Amount          int64
	Metadata        map[string]string
	IdempotencyKey  string
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// Gateway is implemented by the Stripe client and the in-process sandbox.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)
}
