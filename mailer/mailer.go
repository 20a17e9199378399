package mailer

import (
	"log"

	gomail "gopkg.in/gomail.v2"

	"event-marketplace-server/config"
)

// Mailer sends transactional email. Delivery is best effort: failures
// are logged by callers and never surfaced to the triggering request.
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody, textBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}
	return m.dialer.DialAndSend(msg)
}

// NoopMailer drops all mail. Used when SMTP is not configured and in tests.
type NoopMailer struct{}

func (NoopMailer) Send(to, subject, htmlBody, textBody string) error {
	log.Printf("📭 Mail delivery disabled, dropping mail to %s (%s)", to, subject)
	return nil
}
