package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer sends operational alerts when a source file ends up marked failed.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(host string, port int, user, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		addr:     fmt.Sprintf("%s:%d", host, port),
	}
}

// SendAlert sends a plain-text failure notification.
func (m *Mailer) SendAlert(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
