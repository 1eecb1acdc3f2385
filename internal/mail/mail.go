// Package mail delivers contact-form submissions over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("SMTP credentials not configured")

// Message is one contact-form submission.
type Message struct {
	Name    string
	Email   string
	Message string
}

// Validate checks the fields a visitor must fill in.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(m.Message) == "" {
		return errors.New("message is required")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

// Config holds SMTP settings.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender sends contact messages to the site owner.
type Sender struct {
	cfg    Config
	send   SendFunc
	logger *zap.Logger
}

// NewSender returns a Sender using smtp.SendMail.
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{cfg: cfg, send: smtp.SendMail, logger: logger}
}

// WithSendFunc swaps the transport, for tests.
func (s *Sender) WithSendFunc(f SendFunc) *Sender {
	s.send = f
	return s
}

// Send delivers m. ctx is checked before dialing; net/smtp itself is not
// cancellable.
func (s *Sender) Send(ctx context.Context, m Message) error {
	if s.cfg.User == "" || s.cfg.Pass == "" {
		return ErrNotConfigured
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := s.send(addr, auth, s.cfg.User, []string{s.cfg.To}, s.compose(m)); err != nil {
		s.logger.Error("sending contact email", zap.Error(err))
		return fmt.Errorf("send contact email: %w", err)
	}

	s.logger.Info("contact email sent")
	return nil
}

func (s *Sender) compose(m Message) []byte {
	name := headerSafe(m.Name)
	subject := fmt.Sprintf("Portfolio Contact: %s", name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, name, m.Email, m.Message)

	return []byte("To: " + s.cfg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + s.cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(m.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}
