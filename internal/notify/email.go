package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/config"
)

// sendMailFunc matches smtp.SendMail, injectable for tests.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailDispatcher delivers notifications as plain-text email over SMTP.
// The target address is the recipient's email address.
type EmailDispatcher struct {
	cfg      config.SMTPConfig
	sendMail sendMailFunc
}

// NewEmailDispatcher creates an email dispatcher from the SMTP configuration.
// Returns ErrDisabled when the transport is switched off.
func NewEmailDispatcher(cfg config.SMTPConfig) (*EmailDispatcher, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	return &EmailDispatcher{
		cfg:      cfg,
		sendMail: smtp.SendMail,
	}, nil
}

// Deliver sends one notification email to one recipient.
//
// The context is checked before the SMTP exchange starts; net/smtp itself
// does not take a context, so an in-flight send runs to its own timeout.
func (d *EmailDispatcher) Deliver(ctx context.Context, target Target, title, body string) error {
	if target.Kind != KindEmail {
		return fmt.Errorf("%w: %q", ErrUnknownKind, target.Kind)
	}
	if !strings.Contains(target.Address, "@") {
		return fmt.Errorf("%w: invalid email address %q", ErrDeliveryFailure, target.Address)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrDeliveryFailure, ctx.Err())
	default:
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		d.cfg.From, target.Address, title, body,
	))

	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	if err := d.sendMail(addr, auth, d.cfg.From, []string{target.Address}, msg); err != nil {
		return fmt.Errorf("%w: sending email to %s: %w", ErrDeliveryFailure, target.Address, err)
	}

	return nil
}
