package jobs

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends plain-text transactional mail over SMTP. Local development
// points it at Mailpit.
type Mailer struct {
	host string
	port int
	from string
}

// NewMailer constructs a Mailer.
func NewMailer(host string, port int, from string) *Mailer {
	return &Mailer{host: host, port: port, from: from}
}

// Send delivers a single message.
func (m *Mailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return smtp.SendMail(addr, nil, m.from, []string{to}, []byte(msg.String()))
}
