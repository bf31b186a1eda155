package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mailersend/mailersend-go"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// MailerSendMailer delivers through the MailerSend API.
type MailerSendMailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

// NewMailerSendMailer builds the mailer; the API key is required.
func NewMailerSendMailer(cfg config.MailConfig) (*MailerSendMailer, error) {
	if cfg.MailerSendAPIKey == "" {
		return nil, errors.New("MAILERSEND_API_KEY required for mailersend provider")
	}
	return &MailerSendMailer{
		client: mailersend.NewMailersend(cfg.MailerSendAPIKey),
		from: mailersend.From{
			Name:  cfg.FromName,
			Email: cfg.FromEmail,
		},
	}, nil
}

func (m *MailerSendMailer) Send(ctx context.Context, toEmail, subject, text string) error {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
