package mailer

import (
	"errors"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}

type smtpMailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func New(cfg Config) Mailer {
	return &smtpMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (m *smtpMailer) Send(to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return errors.New("mailer: no recipients")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
