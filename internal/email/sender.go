// Package email delivers transactional mail. Delivery is best-effort; callers
// decide whether a failure matters.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender sends a plain-text message to one recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail via unauthenticated SMTP (Mailpit-compatible in dev).
type SMTPSender struct {
	addr string
	from string
}

// NewSMTPSender constructs an SMTP sender for host:port with a From address.
func NewSMTPSender(host, port, from string) *SMTPSender {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@agendaclin.local"
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from,
	}
}

// Send delivers one message synchronously.
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body,
	)
	return smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg))
}
