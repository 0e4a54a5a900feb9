// Package whatsapp sends WhatsApp messages through the Twilio API.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/food-expiry-tracker/internal/config"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var (
	ErrNotConfigured = errors.New("whatsapp not configured")
	ErrNoPhoneNumber = errors.New("phone number not provided")
)

// Client wraps a Twilio REST client with the configured sender number.
type Client struct {
	rest               *twilio.RestClient
	from               string
	defaultCountryCode string
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	c := &Client{
		from:               withPrefix(cfg.FromNumber),
		defaultCountryCode: cfg.DefaultCountryCode,
	}
	if cfg.Enabled() {
		c.rest = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
	}
	return c
}

// Send delivers body to phone. The Twilio client has no context support, so the call is
// abandoned (not cancelled) once ctx is done.
func (c *Client) Send(ctx context.Context, phone, body string) error {
	if c.rest == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(phone) == "" {
		return ErrNoPhoneNumber
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo("whatsapp:" + FormatPhoneNumber(phone, c.defaultCountryCode))
	params.SetBody(body)

	done := make(chan error, 1)
	go func() {
		_, err := c.rest.Api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send whatsapp message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send whatsapp message: %w", ctx.Err())
	}
}

// FormatPhoneNumber normalizes a user-entered number to E.164. A leading trunk 0 becomes
// country code 1; numbers without a recognized country code get defaultCode prepended.
func FormatPhoneNumber(phone, defaultCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, "0") {
		digits = "1" + digits[1:]
	}
	if !hasKnownCountryCode(digits) {
		if defaultCode == "" {
			defaultCode = "1"
		}
		digits = strings.TrimPrefix(defaultCode, "+") + digits
	}
	return "+" + digits
}

func hasKnownCountryCode(digits string) bool {
	for _, cc := range []string{"1", "91", "44"} {
		if strings.HasPrefix(digits, cc) {
			return true
		}
	}
	return false
}

func withPrefix(from string) string {
	if from == "" || strings.HasPrefix(from, "whatsapp:") {
		return from
	}
	return "whatsapp:" + from
}
