package utils

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends HTML mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer returns nil when host, user or password is missing, so
// callers can treat mail as disabled.
func NewMailer(host string, port int, user, pass string) *Mailer {
	if host == "" || user == "" || pass == "" {
		return nil
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

func (m *Mailer) SendEmail(to, subject, body string) error {
	return m.dialer.DialAndSend(NewMessage(m.from, to, subject, body))
}

func NewMessage(from, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}
