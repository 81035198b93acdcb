package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer sends one plaintext message. Delivery is synchronous; callers treat
// a failure as a user-facing warning, never a rollback.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SendGridMailer delivers through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	sender string
}

func NewSendGridMailer(apiKey, sender string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := sgmail.NewSingleEmail(
		sgmail.NewEmail("", m.sender),
		subject,
		sgmail.NewEmail("", to),
		body,
		"",
	)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mail: sendgrid responded %d", resp.StatusCode)
	}
	return nil
}

// LogMailer writes outbound messages to the log instead of delivering them.
// Default provider for development.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Info("outbound mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
