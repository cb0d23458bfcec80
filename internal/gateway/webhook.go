package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"ignitegigs/internal/domain"
)

const SignatureHeader = "Stripe-Signature"

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventAccountUpdated   = "account.updated"
	EventPayoutPaid       = "payout.paid"
)

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type PaymentIntentObject struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// BookingID and PaymentType come from the metadata attached at creation.
func (p PaymentIntentObject) BookingID() string { return p.Metadata["booking_id"] }

func (p PaymentIntentObject) PaymentType() domain.PaymentType {
	return domain.PaymentType(p.Metadata["payment_type"])
}

type AccountObject struct {
	ID             string `json:"id"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

type PayoutObject struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Destination string `json:"destination"`
}

// ParseEvent verifies the signature header and decodes the envelope. Nothing
// is decoded from an unverified payload.
func ParseEvent(payload []byte, header, secret string, tolerance time.Duration, now time.Time) (*Event, error) {
	if err := VerifySignature(payload, header, secret, tolerance, now); err != nil {
		return nil, err
	}
	return decodeEvent(payload)
}

func decodeEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, domain.Validation("malformed webhook payload")
	}
	if ev.Type == "" {
		return nil, domain.Validation("webhook event has no type")
	}
	return &ev, nil
}

// Decode unmarshals the event's data.object into v.
func (e *Event) Decode(v any) error {
	if len(e.Data.Object) == 0 {
		return domain.Validation("webhook event has no data object")
	}
	return json.Unmarshal(e.Data.Object, v)
}

// VerifySignature checks a "t=<unix>,v1=<hex>" header: the hex is
// HMAC-SHA256 of "<t>.<payload>" under secret, and t must be within
// tolerance of now. Any v1 entry may match, which allows secret rotation.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if secret == "" || header == "" {
		return domain.ErrInvalidSignature
	}
	var ts int64 = -1
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return domain.ErrInvalidSignature
			}
			ts = n
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts < 0 || len(sigs) == 0 {
		return domain.ErrInvalidSignature
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return domain.ErrInvalidSignature
		}
	}

	expected := computeSignature(payload, secret, ts)
	for _, s := range sigs {
		got, err := hex.DecodeString(s)
		if err != nil {
			continue
		}
		if hmac.Equal(got, expected) {
			return nil
		}
	}
	return domain.ErrInvalidSignature
}

// SignatureHeaderValue builds a header the way the provider does; used by the
// sandbox flow and tests.
func SignatureHeaderValue(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(computeSignature(payload, secret, ts)))
}

func computeSignature(payload []byte, secret string, ts int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
