package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// SMTPMailer sends mail through a plain SMTP relay (Mailpit locally, a real
// relay in staging).
type SMTPMailer struct {
	host string
	port int
	from string
	user string
	pass string
}

// NewSMTPMailer builds the mailer from config.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		host: strings.TrimSpace(cfg.SMTPHost),
		port: cfg.SMTPPort,
		from: strings.TrimSpace(cfg.FromEmail),
		user: strings.TrimSpace(cfg.SMTPUser),
		pass: strings.TrimSpace(cfg.SMTPPassword),
	}
}

func (s *SMTPMailer) Send(ctx context.Context, toEmail, subject, text string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.from)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n", text)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	// net/smtp has no context support; run the send in a goroutine and give
	// up when the deadline passes. The orphaned attempt finishes on its own.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.from, []string{toEmail}, buf.Bytes())
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
