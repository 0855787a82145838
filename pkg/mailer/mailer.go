// Package mailer sends the welcome/goodbye messages around account
// lifecycle events. Delivery is best-effort: callers fire and forget.
package mailer

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Notifier interface {
	SendWelcome(email, name string) error
	SendGoodbye(email, name string) error
}

type SendGrid struct {
	client *sendgrid.Client
	from   string
}

func NewSendGrid(apiKey, from string) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

func (s *SendGrid) SendWelcome(email, name string) error {
	body := fmt.Sprintf("Hey %s,\nWelcome to the app!\nPlease let us know how you get along with it.", name)
	return s.send(email, name, "Thanks for joining in!", body)
}

func (s *SendGrid) SendGoodbye(email, name string) error {
	body := fmt.Sprintf("Hey %s,\nWe are sorry to see you go.\nLet us know what we could have done better.", name)
	return s.send(email, name, "Sorry to see you go", body)
}

func (s *SendGrid) send(email, name, subject, body string) error {
	msg := mail.NewSingleEmail(
		mail.NewEmail("TaskHub", s.from),
		subject,
		mail.NewEmail(name, email),
		body,
		"",
	)

	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Noop is used when no API key is configured (dev, tests).
type Noop struct{}

func (Noop) SendWelcome(email, name string) error { return nil }
func (Noop) SendGoodbye(email, name string) error { return nil }
