// Package mail delivers the HTML report over SMTP. Delivery failure
// degrades a run; it never aborts one.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"

	"budgetwatch/internal/log"
)

type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *log.Logger
}

func NewSender(host string, port int, username, password, from string, logger *log.Logger) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger.WithComponent(log.ComponentMail),
	}
}

// Send delivers one HTML message to the given recipients. The subject is
// RFC 2047 encoded so emoji survive transport.
func (s *Sender) Send(ctx context.Context, recipients []string, subject, htmlBody string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	msg := buildMessage(s.from, recipients, subject, htmlBody)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	s.logger.InfoContext(ctx, "sending report email",
		slog.String(log.FieldOperation, log.OpSend),
		slog.Int(log.FieldCount, len(recipients)),
	)

	if err := smtp.SendMail(addr, auth, s.from, recipients, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func buildMessage(from string, recipients []string, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(recipients, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
