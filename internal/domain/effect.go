package domain

// EmailTemplate names a transactional email.
type EmailTemplate string

const (
	EmailNewBookingRequest EmailTemplate = "new_booking_request"
	EmailBookingAccepted   EmailTemplate = "booking_accepted"
	EmailBookingDeclined   EmailTemplate = "booking_declined"
	EmailBookingCancelled  EmailTemplate = "booking_cancelled"
	EmailPaymentConfirmed  EmailTemplate = "payment_confirmed"
	EmailReviewReminder    EmailTemplate = "review_reminder"
	EmailDisputeFiled      EmailTemplate = "dispute_filed"
	EmailNewMessage        EmailTemplate = "new_message"
	EmailPaymentFailed     EmailTemplate = "payment_failed"
)

// EmailIntent asks for a templated email to a user. The dispatcher resolves
// the recipient address.
type EmailIntent struct {
	Template EmailTemplate
	UserID   string
	Data     map[string]any
}

// NotifyIntent asks for an in-app notification.
type NotifyIntent struct {
	UserID string
	Type   NotificationType
	Title  string
	Body   string
	Link   string
}

// Effect is one side effect of a state change. Exactly one field is set.
type Effect struct {
	Email  *EmailIntent
	Notify *NotifyIntent
}

func SendEmail(tpl EmailTemplate, userID string, data map[string]any) Effect {
	return Effect{Email: &EmailIntent{Template: tpl, UserID: userID, Data: data}}
}

func Notify(userID string, typ NotificationType, title, body, link string) Effect {
	return Effect{Notify: &NotifyIntent{UserID: userID, Type: typ, Title: title, Body: body, Link: link}}
}

// Kind labels the effect for logs and metrics.
func (e Effect) Kind() string {
	switch {
	case e.Email != nil:
		return "email:" + string(e.Email.Template)
	case e.Notify != nil:
		return "notification:" + string(e.Notify.Type)
	default:
		return "none"
	}
}
