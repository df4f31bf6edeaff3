package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client   sendgridClient
	fromName string
	from     string
}

// NewSendGridMailer returns a mailer authenticated with apiKey that sends
// from the given address.
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), fromName: "Conference Central", from: from}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	message := sgmail.NewV3Mail()
	message.From = sgmail.NewEmail(m.fromName, m.from)
	message.Subject = subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", to))
	message.AddPersonalizations(p)
	message.AddContent(sgmail.NewContent("text/plain", body))

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through SendGrid: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}
