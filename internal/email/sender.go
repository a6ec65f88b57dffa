// Package email delivers the sync failure report. The rest of the system
// only sees the Sender interface; SMTP details stay here.
package email

import (
	"context"
	"fmt"
	"time"

	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/logger"

	gomail "github.com/wneessen/go-mail"
)

// Sender dispatches one notification message.
type Sender interface {
	Send(ctx context.Context, subject, textBody, htmlBody, recipient string) error
}

// NewSender returns an SMTP-backed sender, or a no-op sender when email is
// disabled so runs still complete in environments without an SMTP relay.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return &noopSender{log: log}
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func (s *SMTPSender) Send(ctx context.Context, subject, textBody, htmlBody, recipient string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	if htmlBody != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

type noopSender struct {
	log *logger.Logger
}

func (s *noopSender) Send(_ context.Context, subject, _, _, _ string) error {
	s.log.Info("email disabled, skipping notification", "subject", subject)
	return nil
}
