// Package notify delivers plain-text emails and back-office alerts.
package notify

import (
	"context"

	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer dials the server for every message.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	return m.dialer.DialAndSend(gm)
}

// Noop logs messages instead of sending them. Used when SMTP is disabled.
type Noop struct{}

func (Noop) Send(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Debug("mail disabled, message dropped")
	return nil
}
