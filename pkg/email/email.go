package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/food-expiry-tracker/internal/config"
	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("email not configured")

// Message is one outgoing email. HTML is optional.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email over SMTP.
type Sender struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

// NewSender builds a Sender from cfg. A Sender with missing SMTP settings fails every send
// with ErrNotConfigured instead of dialing.
func NewSender(cfg config.EmailConfig) *Sender {
	s := &Sender{cfg: cfg}
	if cfg.Enabled() {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// Send delivers msg, giving up when ctx is done. gomail has no context support, so an
// abandoned dial finishes in the background.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.Sender, "FoodWaste Tracker")
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}
