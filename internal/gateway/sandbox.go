package gateway

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Sandbox is an in-process gateway for local development and tests. It
// accepts every request and remembers what it was asked to do.
type Sandbox struct {
	mu      sync.Mutex
	intents []IntentRequest
	refunds []RefundRequest
	byKey   map[string]*Intent
	// Fail, when set, is returned by every call.
	Fail error
}

func NewSandbox() *Sandbox {
	return &Sandbox{byKey: make(map[string]*Intent)}
}

func (s *Sandbox) CreatePaymentIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, gatewayError(s.Fail)
	}
	if in, ok := s.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return in, nil
	}
	id := "pi_sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	in := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString()[:8],
		Status:       "requires_payment_method",
		Amount:       req.Amount,
	}
	s.intents = append(s.intents, req)
	if req.IdempotencyKey != "" {
		s.byKey[req.IdempotencyKey] = in
	}
	return in, nil
}

func (s *Sandbox) CreateRefund(_ context.Context, req RefundRequest) (*Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, gatewayError(s.Fail)
	}
	s.refunds = append(s.refunds, req)
	return &Refund{ID: "re_sandbox_" + uuid.NewString()[:8], Status: "succeeded", Amount: req.Amount}, nil
}

func (s *Sandbox) Intents() []IntentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]IntentRequest(nil), s.intents...)
}

func (s *Sandbox) Refunds() []RefundRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RefundRequest(nil), s.refunds...)
}
