package repositories

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/models"

	"github.com/sirupsen/logrus"
)

// SMTPMailer sends HTML mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg      config.SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

func (m *SMTPMailer) SendEmail(ctx context.Context, email models.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(email.To) == 0 {
		return fmt.Errorf("send email: no recipients")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" || m.cfg.Password != "" {
		user := m.cfg.Username
		if user == "" {
			user = m.cfg.From
		}
		auth = smtp.PlainAuth("", user, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.sendMail(addr, auth, m.cfg.From, email.To, buildMessage(m.cfg.From, email)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from string, email models.Email) []byte {
	var b strings.Builder
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", email.Subject) + "\r\n")
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(email.To, ", ") + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(email.Body + "\r\n")
	return []byte(b.String())
}

// DiscardMailer logs messages instead of sending them.
type DiscardMailer struct {
	Logger logrus.FieldLogger
}

func (m DiscardMailer) SendEmail(ctx context.Context, email models.Email) error {
	m.Logger.WithField("to", strings.Join(email.To, ",")).Debugf("Event ID: EMAIL_DISCARDED, Description: Mail disabled, dropped %q", email.Subject)
	return nil
}
