package smtp

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/trainingdesk-api/internal/config"
)

// Mailer sends emails. Both methods are best-effort collaborators: callers
// decide whether a send failure is fatal.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
	SendEmailWithAttachment(to, subject, htmlBody, filename string, attachment []byte) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, htmlBody string) error {
	msg := buildMessage(m.from, to, subject, htmlBody)
	return m.send(to, []byte(msg))
}

func (m *mailer) SendEmailWithAttachment(to, subject, htmlBody, filename string, attachment []byte) error {
	msg := buildMessageWithAttachment(m.from, to, subject, htmlBody, filename, attachment)
	return m.send(to, []byte(msg))
}

func (m *mailer) send(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}

func buildMessage(from, to, subject, htmlBody string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"",
		htmlBody,
	}
	return strings.Join(headers, "\r\n")
}

// multipartBoundary separates the HTML body from the attachment part. A fixed
// boundary is fine here: the marker only needs to not occur in the base64
// payload, and base64 never emits '='-prefixed runs like this.
const multipartBoundary = "=_trainingdesk_mime_boundary_"

func buildMessageWithAttachment(from, to, subject, htmlBody, filename string, attachment []byte) string {
	var b strings.Builder

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="` + multipartBoundary + `"`,
		"",
		"--" + multipartBoundary,
		"Content-Type: text/html; charset=utf-8",
		"",
		htmlBody,
		"",
		"--" + multipartBoundary,
		"Content-Type: application/pdf",
		"Content-Transfer-Encoding: base64",
		`Content-Disposition: attachment; filename="` + filename + `"`,
		"",
	}
	b.WriteString(strings.Join(headers, "\r\n"))
	b.WriteString("\r\n")

	// RFC 2045 wants encoded lines capped at 76 characters.
	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n--" + multipartBoundary + "--\r\n")

	return b.String()
}
