// Package notification delivers the side effects of booking and dispute
// changes: templated emails, stored in-app notifications, and realtime pushes
// to connected websocket clients.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/email"
	"ignitegigs/internal/logging"
	"ignitegigs/internal/metrics"
)

// PushEvent is the websocket frame sent for a new notification.
type PushEvent struct {
	Type string               `json:"type"`
	Data *domain.Notification `json:"data"`
}

// Dispatcher runs effects best-effort. A failing effect is logged and counted
// and never stops the ones after it.
type Dispatcher struct {
	users    UserDirectory
	store    NotificationRepository
	renderer Renderer
	sender   email.Sender
	pusher   Pusher
	log      zerolog.Logger
	now      func() time.Time
}

func NewDispatcher(
	users UserDirectory,
	store NotificationRepository,
	renderer Renderer,
	sender email.Sender,
	pusher Pusher,
	log zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		users:    users,
		store:    store,
		renderer: renderer,
		sender:   sender,
		pusher:   pusher,
		log:      log.With().Str("component", "dispatcher").Logger(),
		now:      time.Now,
	}
}

// Dispatch executes effects in order and returns how many failed. The request
// context's cancellation is dropped so a client hanging up does not abort
// deliveries for a change that has already been written.
func (d *Dispatcher) Dispatch(ctx context.Context, effects []domain.Effect) int {
	ctx = context.WithoutCancel(ctx)
	failed := 0
	for _, e := range effects {
		if err := d.run(ctx, e); err != nil {
			failed++
			metrics.SideEffectFailures.WithLabelValues(e.Kind()).Inc()
			logging.Ctx(ctx, d.log).Error().Err(err).Str("effect", e.Kind()).Msg("side effect failed")
		}
	}
	return failed
}

func (d *Dispatcher) run(ctx context.Context, e domain.Effect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch {
	case e.Email != nil:
		return d.sendEmail(ctx, e.Email)
	case e.Notify != nil:
		return d.notify(ctx, e.Notify)
	}
	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, in *domain.EmailIntent) error {
	u, err := d.users.GetByID(ctx, in.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", in.UserID, err)
	}
	if u.Email == "" {
		return fmt.Errorf("recipient %s has no email address", in.UserID)
	}

	subject, html, err := d.renderer.Render(in.Template, in.Data)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, email.Message{To: u.Email, Subject: subject, HTML: html})
}

func (d *Dispatcher) notify(ctx context.Context, in *domain.NotifyIntent) error {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Body:      in.Body,
		Link:      in.Link,
		CreatedAt: d.now().UTC(),
	}
	if err := d.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	if d.pusher != nil {
		d.pusher.SendToUser(in.UserID, PushEvent{Type: "notification", Data: n})
	}
	return nil
}
