// Package mail delivers transactional email (verification and activation
// codes) over SMTP.
package mail

import (
	"log/slog"

	"myblog/internal/config"
	"myblog/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Mailer sends a plain-text email to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
}

// NewMailer picks an implementation from the configuration: SMTP when a
// host is configured, otherwise a logger that only records the mail. The
// fallback keeps the registration flow usable in development and tests.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
	}
}

// Send delivers the message via SMTP.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.password)
	return d.DialAndSend(msg)
}

// LogMailer writes outgoing mail to the structured log instead of sending it.
type LogMailer struct{}

// Send logs the message.
func (m *LogMailer) Send(to, subject, body string) error {
	middleware.Logger.Info("mail (not sent, SMTP unconfigured)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
