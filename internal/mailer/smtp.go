package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends HTML mail through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	// gomail has no context support; the dial keeps running in the background after a timeout
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", to, ctx.Err())
	}
}
