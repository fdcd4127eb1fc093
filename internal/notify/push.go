package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/config"
)

// pushRequest is the JSON body posted to the push gateway.
type pushRequest struct {
	Token string `json:"token"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PushDispatcher delivers notifications to mobile devices through an HTTP
// push gateway. The target address is the device's push token.
type PushDispatcher struct {
	client *resty.Client
}

// NewPushDispatcher creates a push dispatcher from the push configuration.
// Returns ErrDisabled when the transport is switched off.
func NewPushDispatcher(cfg config.PushConfig) (*PushDispatcher, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := resty.New().
		SetBaseURL(cfg.GatewayURL).
		SetTimeout(cfg.TimeoutDuration()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &PushDispatcher{client: client}, nil
}

// Deliver posts one notification to the gateway for one push token.
func (d *PushDispatcher) Deliver(ctx context.Context, target Target, title, body string) error {
	if target.Kind != KindPush {
		return fmt.Errorf("%w: %q", ErrUnknownKind, target.Kind)
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(pushRequest{
			Token: target.Address,
			Title: title,
			Body:  body,
		}).
		Post("/send")
	if err != nil {
		return fmt.Errorf("%w: posting to push gateway: %w", ErrDeliveryFailure, err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return fmt.Errorf("%w: push gateway returned %d", ErrDeliveryFailure, resp.StatusCode())
	}

	return nil
}
