package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const senderName = "Careers"

var receiptTemplate = template.Must(template.New("receipt").Parse(
	`<p>Hi {{.Name}},</p>` +
		`<p>Thanks for applying for <strong>{{.Role}}</strong>. ` +
		`You can track your application here: <a href="{{.TrackingURL}}">{{.TrackingURL}}</a></p>`))

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid emails applicants and the admin through the SendGrid API.
type SendGrid struct {
	client     mailSender
	from       *mail.Email
	adminEmail string
}

func NewSendGrid(apiKey, senderEmail, adminEmail string) *SendGrid {
	return &SendGrid{
		client:     sendgrid.NewSendClient(apiKey),
		from:       mail.NewEmail(senderName, senderEmail),
		adminEmail: strings.TrimSpace(adminEmail),
	}
}

// Notify sends the mail for ev. Admin alerts are skipped when no admin address is set.
func (s *SendGrid) Notify(ctx context.Context, ev Event) error {
	msg, err := s.build(ev)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp != nil && resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *SendGrid) build(ev Event) (*mail.SGMailV3, error) {
	switch ev.Kind {
	case KindApplicantReceipt:
		if strings.TrimSpace(ev.Email) == "" {
			return nil, fmt.Errorf("applicant email is empty")
		}
		var body bytes.Buffer
		if err := receiptTemplate.Execute(&body, ev); err != nil {
			return nil, fmt.Errorf("render receipt: %w", err)
		}
		to := mail.NewEmail(ev.Name, ev.Email)
		plain := fmt.Sprintf("Hi %s,\n\nThanks for applying for %s. Track your application here: %s\n", ev.Name, ev.Role, ev.TrackingURL)
		return mail.NewSingleEmail(s.from, "Thanks for applying: track your application", to, plain, body.String()), nil
	case KindAdminAlert:
		if s.adminEmail == "" {
			return nil, nil
		}
		to := mail.NewEmail("", s.adminEmail)
		subject := fmt.Sprintf("New application: %s (%s)", ev.Name, ev.Role)
		plain := fmt.Sprintf("New application received. Token: %s\nStatus page: %s\n", ev.Token, ev.TrackingURL)
		return mail.NewSingleEmail(s.from, subject, to, plain, ""), nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

var _ Notifier = (*SendGrid)(nil)
