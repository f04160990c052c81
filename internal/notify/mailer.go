// Package notify turns order events into customer emails.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	addr       string
	auth       smtp.Auth
	from       string
	senderName string
}

func NewSMTPMailer(host string, port int, username, password, senderName string) *SMTPMailer {
	return &SMTPMailer{
		addr:       fmt.Sprintf("%s:%d", host, port),
		auth:       smtp.PlainAuth("", username, password, host),
		from:       username,
		senderName: senderName,
	}
}

// Send delivers a single HTML email. smtp.SendMail upgrades to TLS via
// STARTTLS when the server offers it.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := buildMessage(m.senderName, m.from, to, subject, htmlBody)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return errors.Wrapf(err, "send mail to %s", to)
	}
	return nil
}

func buildMessage(senderName, from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", senderName, from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
