package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/logging"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/mqtt"
)

// publishClient is the slice of the MQTT client the publisher needs.
type publishClient interface {
	PublishJSON(topic string, payload []byte) error
}

// Publisher sends commands and setting updates back to controllers.
type Publisher struct {
	client publishClient
	logger *logging.Logger
}

// NewPublisher builds a Publisher over the given client.
func NewPublisher(client publishClient, logger *logging.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger.With("component", "publisher"),
	}
}

// SendCommand publishes a control command to one controller.
//
// The payload is any JSON-marshalable value; controllers expect a bare
// number or boolean for simple actuators.
func (p *Publisher) SendCommand(guid, control string, payload any) error {
	if guid == "" || control == "" {
		return fmt.Errorf("%w: guid and control required", ErrMalformedTopic)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding command payload: %w", err)
	}

	topic := mqtt.Topics{}.Command(guid, control)
	if err := p.client.PublishJSON(topic, body); err != nil {
		return fmt.Errorf("publishing command: %w", err)
	}

	p.logger.Info("command sent", "guid", guid, "control", control)
	return nil
}

// SendSettings publishes a settings update batch to one controller.
//
// Values are keyed by parameter ID and sent as a flat JSON object with
// stringified integer keys, matching the inbound settings snapshot shape.
func (p *Publisher) SendSettings(guid string, values map[int]float64) error {
	if guid == "" {
		return fmt.Errorf("%w: guid required", ErrMalformedTopic)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: empty settings batch", ErrInvalidPayloadShape)
	}

	flat := make(map[string]float64, len(values))
	for id, value := range values {
		flat[strconv.Itoa(id)] = value
	}

	body, err := json.Marshal(flat)
	if err != nil {
		return fmt.Errorf("encoding settings payload: %w", err)
	}

	topic := mqtt.Topics{}.SettingsUpdate(guid)
	if err := p.client.PublishJSON(topic, body); err != nil {
		return fmt.Errorf("publishing settings: %w", err)
	}

	p.logger.Info("settings sent", "guid", guid, "parameters", len(values))
	return nil
}
