package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"ignitegigs/internal/domain"
)

type tpl struct {
	subject string
	body    string
}

var templates = map[domain.EmailTemplate]tpl{
	domain.EmailNewBookingRequest: {
		subject: "New booking request from {{.client_name}}",
		body: `<p>Hi {{.performer_name}},</p>
<p>{{.client_name}} would like to book you.</p>
<ul>
<li>Date: {{.event_date}}{{if .event_time}} at {{.event_time}}{{end}}</li>
<li>Location: {{.event_location}}</li>
{{if .event_type}}<li>Event: {{.event_type}}</li>{{end}}
<li>Quote: {{.quoted_price}}</li>
</ul>
{{if .event_details}}<p>{{.event_details}}</p>{{end}}
<p><a href="{{.app_url}}{{.link}}">Respond to this request</a></p>`,
	},
	domain.EmailBookingAccepted: {
		subject: "{{.performer_name}} accepted your booking!",
		body: `<p>Hi {{.client_name}},</p>
<p>{{.performer_name}} accepted your booking on {{.event_date}} at {{.event_location}}.</p>
<p>The agreed price is {{.agreed_price}}. Pay the deposit to confirm the date.</p>
<p><a href="{{.app_url}}{{.link}}">Pay deposit</a></p>`,
	},
	domain.EmailBookingDeclined: {
		subject: "Update on your booking request",
		body: `<p>Hi {{.client_name}},</p>
<p>Unfortunately {{.performer_name}} can't take your booking on {{.event_date}}.</p>
{{if .reason}}<p>Their note: {{.reason}}</p>{{end}}
<p><a href="{{.app_url}}/performers">Find another performer</a></p>`,
	},
	domain.EmailBookingCancelled: {
		subject: "Booking cancelled",
		body: `<p>Hi {{.performer_name}},</p>
<p>{{.client_name}} cancelled the booking on {{.event_date}}.</p>
{{if .reason}}<p>Reason: {{.reason}}</p>{{end}}`,
	},
	domain.EmailPaymentConfirmed: {
		subject: "Payment received for your booking",
		body: `<p>Hi {{.client_name}},</p>
<p>We received your {{.payment_type}} payment of {{.amount}} for {{.performer_name}} on {{.event_date}}.</p>
<p><a href="{{.app_url}}{{.link}}">View booking</a></p>`,
	},
	domain.EmailReviewReminder: {
		subject: "How was {{.performer_name}}?",
		body: `<p>Hi {{.client_name}},</p>
<p>Your booking is complete. A quick review helps other clients and {{.performer_name}}.</p>
<p><a href="{{.app_url}}{{.link}}">Leave a review</a></p>`,
	},
	domain.EmailDisputeFiled: {
		subject: "A dispute was filed on your booking",
		body: `<p>{{.raised_by}} filed a dispute ({{.reason}}) about the booking on {{.event_date}}.</p>
<p>Our team will review it and contact you. You can add your side of the story from the dispute page.</p>
<p><a href="{{.app_url}}{{.link}}">View dispute</a></p>`,
	},
	domain.EmailNewMessage: {
		subject: "New message from {{.sender_name}}",
		body: `<p>{{.sender_name}} sent you a message:</p>
<blockquote>{{.preview}}</blockquote>
<p><a href="{{.app_url}}{{.link}}">Reply</a></p>`,
	},
	domain.EmailPaymentFailed: {
		subject: "Your payment didn't go through",
		body: `<p>Your {{.payment_type}} payment could not be processed. No money was taken.</p>
<p><a href="{{.app_url}}{{.link}}">Try again</a></p>`,
	},
}

// Renderer turns a template name and data into subject and HTML body.
type Renderer struct {
	appURL   string
	subjects map[domain.EmailTemplate]*texttemplate.Template
	bodies   map[domain.EmailTemplate]*template.Template
}

func NewRenderer(appURL string) (*Renderer, error) {
	r := &Renderer{
		appURL:   strings.TrimRight(appURL, "/"),
		subjects: make(map[domain.EmailTemplate]*texttemplate.Template, len(templates)),
		bodies:   make(map[domain.EmailTemplate]*template.Template, len(templates)),
	}
	for name, t := range templates {
		s, err := texttemplate.New(string(name) + ".subject").Parse(t.subject)
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}
		b, err := template.New(string(name)).Parse(t.body)
		if err != nil {
			return nil, fmt.Errorf("parse %s body: %w", name, err)
		}
		r.subjects[name], r.bodies[name] = s, b
	}
	return r, nil
}

func (r *Renderer) Render(name domain.EmailTemplate, data map[string]any) (subject, html string, err error) {
	st, ok := r.subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	merged := make(map[string]any, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	merged["app_url"] = r.appURL

	var sb, bb bytes.Buffer
	if err := st.Execute(&sb, merged); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := r.bodies[name].Execute(&bb, merged); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), bb.String(), nil
}
