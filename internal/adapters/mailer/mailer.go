// Package mailer delivers password reset links.
package mailer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"expense-insight/internal/config"
)

const resetSubject = "Password Reset Request"

// SMTPMailer sends mail through an authenticated SMTP relay
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer for cfg
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
		send: smtp.SendMail,
	}
}

// SendPasswordReset mails link to the account owner
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildResetMessage(m.from, to, link, time.Now().UTC())
	if err := m.send(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func buildResetMessage(from, to, link string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + resetSubject + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("You requested a password reset.\r\n\r\n")
	b.WriteString("Open the link below to choose a new password:\r\n")
	b.WriteString(link + "\r\n\r\n")
	b.WriteString("The link expires in 15 minutes. If you did not request this, ignore this email.\r\n")
	return []byte(b.String())
}

// LogMailer writes reset links to the log. Used when SMTP_HOST is unset.
type LogMailer struct{}

// SendPasswordReset logs the link instead of sending it
func (LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	log.Printf("📧 [mail disabled] password reset for %s: %s", to, link)
	return nil
}
