package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/metrics"
)

type StripeConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
	// RequestsPerSecond caps outbound calls; Stripe throttles at the account level.
	RequestsPerSecond float64
	// FailureThreshold is the consecutive server-side failures that open the breaker.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Stripe is a minimal form-encoded REST client for the endpoints the
// marketplace needs.
type Stripe struct {
	cfg     StripeConfig
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
}

// APIError is a non-2xx reply from the gateway.
type APIError struct {
	Status  int
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe %d %s: %s", e.Status, e.Type, e.Message)
}

func NewStripe(cfg StripeConfig, log zerolog.Logger) *Stripe {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	s := &Stripe{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1),
		log:     log.With().Str("component", "stripe").Logger(),
	}
	s.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Card declines and validation errors are the caller's problem,
		// not a sign the gateway is down.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError && apiErr.Status != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return s
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", req.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("transfer_data[destination]", req.ConnectedAccountID)
	form.Set("application_fee_amount", strconv.FormatInt(req.ApplicationFee, 10))
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	setMetadata(form, req.Metadata)

	var out Intent
	if err := s.post(ctx, "payment_intent.create", "/v1/payment_intents", form, req.IdempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRefund refunds against the intent, pulling the money back from the
// connected account and returning the platform fee.
func (s *Stripe) CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", req.PaymentIntentID)
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("reverse_transfer", "true")
	form.Set("refund_application_fee", "true")
	setMetadata(form, req.Metadata)

	var out Refund
	if err := s.post(ctx, "refund.create", "/v1/refunds", form, req.IdempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Stripe) post(ctx context.Context, op, path string, form url.Values, idemKey string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.GatewayRequests.WithLabelValues(op, "throttled").Inc()
		return gatewayError(err)
	}

	body, err := s.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(s.cfg.SecretKey, "")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if idemKey != "" {
			req.Header.Set("Idempotency-Key", idemKey)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			apiErr := &APIError{Status: resp.StatusCode}
			var envelope struct {
				Error *APIError `json:"error"`
			}
			if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
				apiErr.Type, apiErr.Code, apiErr.Message = envelope.Error.Type, envelope.Error.Code, envelope.Error.Message
			}
			return nil, apiErr
		}
		return raw, nil
	})
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(op, outcome(err)).Inc()
		s.log.Error().Err(err).Str("operation", op).Msg("gateway request failed")
		return gatewayError(err)
	}
	metrics.GatewayRequests.WithLabelValues(op, "ok").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		return gatewayError(fmt.Errorf("decode %s response: %w", op, err))
	}
	return nil
}

func setMetadata(form url.Values, md map[string]string) {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		form.Set("metadata["+k+"]", md[k])
	}
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return "rejected"
	default:
		return "error"
	}
}

// gatewayError wraps err as a domain gateway failure. The provider's own
// message is surfaced for client-side errors such as card declines.
func gatewayError(err error) error {
	msg := "The payment provider is unavailable, please try again shortly"
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return fmt.Errorf("%w: %w", &domain.Error{Kind: domain.ErrGateway, Message: msg}, err)
}
