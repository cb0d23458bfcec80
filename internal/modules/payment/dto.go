package payment

import "ignitegigs/internal/pricing"

type InitiatePaymentResponse struct {
	BookingID    string        `json:"booking_id" example:"3f0c2a9e-8d1b-4c1e-9a61-2f7d1c0b5e44"`
	PaymentType  string        `json:"payment_type" example:"deposit"`
	IntentID     string        `json:"intent_id" example:"pi_3PqYc2LkdIwHu7ix0abc"`
	ClientSecret string        `json:"client_secret" example:"pi_3PqYc2LkdIwHu7ix0abc_secret_xyz"`
	Currency     string        `json:"currency" example:"gbp"`
	Split        pricing.Split `json:"split"`
}

type WebhookAck struct {
	Received bool `json:"received" example:"true"`
}

type SweepResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}
