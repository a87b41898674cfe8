// Package mail renders and delivers transactional emails over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/dajohi/goemail"
)

const VerificationSubject = "Your Vivimap Verification Code"

// VerificationEmail is the payload of a verification email task.
type VerificationEmail struct {
	To        string    `json:"to"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sender delivers verification emails.
type Sender interface {
	SendVerification(ctx context.Context, msg VerificationEmail) error
}

// Config holds the SMTP settings. Empty credentials disable delivery.
type Config struct {
	Host     string
	User     string
	Password string
	FromName string
}

// SMTPSender sends mail through an authenticated SMTPS server.
type SMTPSender struct {
	client      *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender returns a sender for cfg. When the host or credentials are
// missing the sender is disabled and only logs.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		slog.Warn("SMTP credentials missing, email delivery disabled")
		return &SMTPSender{disabled: true}, nil
	}

	u := url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host,
	}
	client, err := goemail.NewSMTP(u.String(), &tls.Config{ServerName: hostOnly(cfg.Host)})
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	return &SMTPSender{
		client:      client,
		mailName:    cfg.FromName,
		mailAddress: cfg.User,
	}, nil
}

// Disabled reports whether the sender drops messages.
func (s *SMTPSender) Disabled() bool { return s.disabled }

func (s *SMTPSender) SendVerification(ctx context.Context, msg VerificationEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.disabled {
		slog.Warn("email disabled, verification email not sent", "email", msg.To)
		return nil
	}

	body, err := RenderVerification(msg, time.Now())
	if err != nil {
		return err
	}

	m := goemail.NewHTMLMessage(s.mailAddress, VerificationSubject, body)
	m.AddTo(msg.To)
	m.SetName(s.mailName)
	if err := s.client.Send(m); err != nil {
		return fmt.Errorf("send verification email to %s: %w", msg.To, err)
	}
	slog.Info("verification email sent", "email", msg.To)
	return nil
}

func hostOnly(hostport string) string {
	u := url.URL{Host: hostport}
	return u.Hostname()
}
