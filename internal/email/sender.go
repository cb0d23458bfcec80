package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Resend posts to the Resend HTTP API.
type Resend struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

func NewResend(apiKey, from string, timeout time.Duration) *Resend {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resend{
		apiKey:  apiKey,
		from:    from,
		baseURL: "https://api.resend.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client elsewhere, for tests.
func (r *Resend) WithBaseURL(u string) *Resend {
	r.baseURL = u
	return r
}

func (r *Resend) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(map[string]any{
		"from":    r.from,
		"to":      []string{m.To},
		"subject": m.Subject,
		"html":    m.HTML,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

// LogSender writes emails to the log instead of sending them. Used when no
// API key is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "email").Logger()}
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	s.log.Info().Str("to", m.To).Str("subject", m.Subject).Int("html_bytes", len(m.HTML)).Msg("email not sent: no provider configured")
	return nil
}
